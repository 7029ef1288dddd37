package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"
)

// FileName имя манифеста проекта.
const FileName = "package.json"

var (
	// ErrNotFound возвращается, если в каталоге нет package.json.
	ErrNotFound = errors.New("package.json not found")
	// ErrMalformed возвращается, если package.json не разбирается как JSON.
	ErrMalformed = errors.New("malformed package.json")
)

// Manifest содержит поля package.json, нужные для запуска команд.
type Manifest struct {
	Name            string    `json:"name"`
	PackageManager  string    `json:"packageManager"`
	Scripts         StringMap `json:"scripts"`
	ScriptsInfo     StringMap `json:"scripts-info"`
	Dependencies    StringMap `json:"dependencies"`
	DevDependencies StringMap `json:"devDependencies"`
}

// StringMap разбирает JSON-объект со строковыми значениями.
// Значения другого типа пропускаются, а не-объект дает пустую карту.
type StringMap map[string]string

func (m *StringMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = nil
		return nil
	}
	out := make(StringMap, len(raw))
	for k, v := range raw {
		var s string
		if json.Unmarshal(v, &s) == nil {
			out[k] = s
		}
	}
	*m = out
	return nil
}

// document повторяет Manifest, но строковые поля берет сырыми,
// чтобы неожиданный тип не ломал чтение всего файла.
type document struct {
	Name            json.RawMessage `json:"name"`
	PackageManager  json.RawMessage `json:"packageManager"`
	Scripts         StringMap       `json:"scripts"`
	ScriptsInfo     StringMap       `json:"scripts-info"`
	Dependencies    StringMap       `json:"dependencies"`
	DevDependencies StringMap       `json:"devDependencies"`
}

func rawString(v json.RawMessage) string {
	var s string
	if len(v) == 0 || json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}

// Read читает package.json из каталога dir.
// Комментарии и висячие запятые допускаются.
func Read(dir string) (*Manifest, error) {
	data, path, err := load(dir)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", path, ErrMalformed, err)
	}
	return &Manifest{
		Name:            rawString(doc.Name),
		PackageManager:  rawString(doc.PackageManager),
		Scripts:         doc.Scripts,
		ScriptsInfo:     doc.ScriptsInfo,
		Dependencies:    doc.Dependencies,
		DevDependencies: doc.DevDependencies,
	}, nil
}

// ReadPackageManager возвращает только поле packageManager.
// Остальное содержимое файла не проверяется.
func ReadPackageManager(dir string) (string, error) {
	data, path, err := load(dir)
	if err != nil {
		return "", err
	}
	var doc struct {
		PackageManager json.RawMessage `json:"packageManager"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w: %v", path, ErrMalformed, err)
	}
	return rawString(doc.PackageManager), nil
}

func load(dir string) ([]byte, string, error) {
	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, path, fmt.Errorf("%s: %w", dir, ErrNotFound)
		}
		return nil, path, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, path, fmt.Errorf("%s is a directory: %w", path, ErrNotFound)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- путь строится из каталога проекта пользователя.
	if err != nil {
		return nil, path, fmt.Errorf("read %s: %w", path, err)
	}
	return data, path, nil
}

// Script описывает скрипт из package.json.
type Script struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
}

// ScriptList возвращает скрипты, отсортированные по имени.
func (m *Manifest) ScriptList() []Script {
	names := make([]string, 0, len(m.Scripts))
	for name := range m.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Script, 0, len(names))
	for _, name := range names {
		out = append(out, Script{
			Name:        name,
			Command:     m.Scripts[name],
			Description: m.ScriptsInfo[name],
		})
	}
	return out
}

// HasScript сообщает, объявлен ли скрипт.
func (m *Manifest) HasScript(name string) bool {
	_, ok := m.Scripts[name]
	return ok
}
