package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPath задает путь к конфигу через окружение.
const EnvPath = "GONI_CONFIG"

// Config описывает параметры goni.
type Config struct {
	Agent struct {
		// Default используется, когда агент не определен по каталогу.
		Default string `yaml:"default"`
		// Global используется для глобальных install/uninstall (-g).
		Global string `yaml:"global"`
	} `yaml:"agent"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	History   struct {
		Enabled       bool   `yaml:"enabled"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"history"`
	// Templates переопределяет таблицу шаблонов: agent -> verb -> [exec, tokens...].
	// Значение null отключает verb.
	Templates map[string]map[string][]string `yaml:"templates"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	var cfg Config
	cfg.Agent.Default = "npm"
	cfg.Agent.Global = "npm"
	cfg.LogLevel = "warn"
	cfg.LogFormat = "text"
	cfg.History.Enabled = true
	cfg.History.Path = defaultHistoryPath()
	cfg.History.RetentionDays = 30
	return cfg
}

func defaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "goni", "history.db")
}

// Path возвращает путь к конфигу: GONI_CONFIG либо
// <UserConfigDir>/goni/config.yaml, если файл существует. Пустая строка
// означает работу на значениях по умолчанию.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "goni", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// Load читает конфиг из файла YAML, поверх значений по умолчанию.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- путь к конфигу задает сам пользователь.
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("config file is empty")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
