package detect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"goni/internal/agents"
	"goni/internal/manifest"
)

// ErrNotDetected возвращается, если ни в одном из родительских каталогов
// нет ни lock-файла, ни поля packageManager.
var ErrNotDetected = errors.New("package manager not detected")

// Result описывает найденного агента.
type Result struct {
	Agent    agents.Agent `json:"agent"`
	Version  string       `json:"version,omitempty"`
	Root     string       `json:"root"`
	Lockfile string       `json:"lockfile,omitempty"`
}

// HasLock сообщает, найден ли lock-файл.
func (r Result) HasLock() bool { return r.Lockfile != "" }

type lockfile struct {
	name  string
	agent agents.Agent
}

// Порядок важен: bun и deno могут сосуществовать с package-lock.json.
var lockfiles = []lockfile{
	{"bun.lock", agents.Bun},
	{"bun.lockb", agents.Bun},
	{"deno.lock", agents.Deno},
	{"pnpm-lock.yaml", agents.PNPM},
	{"yarn.lock", agents.Yarn},
	{"package-lock.json", agents.NPM},
	{"npm-shrinkwrap.json", agents.NPM},
}

// workspace-файлы указывают на агента, но не означают наличие lock-файла.
var workspaceFiles = []lockfile{
	{"pnpm-workspace.yaml", agents.PNPM},
}

// Detect ищет агента, поднимаясь от cwd к корню файловой системы.
// В каждом каталоге lock-файл имеет приоритет, поле packageManager
// уточняет версию (yarn berry, pnpm@6).
func Detect(cwd string) (Result, error) {
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return Result{}, fmt.Errorf("resolve %s: %w", cwd, err)
	}
	for {
		res, ok, err := detectDir(dir)
		if err != nil {
			return Result{}, err
		}
		if ok {
			return res, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Result{}, fmt.Errorf("%s: %w", cwd, ErrNotDetected)
		}
		dir = parent
	}
}

func detectDir(dir string) (Result, bool, error) {
	declared, version, hasDeclared, err := readPackageManager(dir)
	if err != nil {
		return Result{}, false, err
	}
	for _, lf := range lockfiles {
		path := filepath.Join(dir, lf.name)
		if !isFile(path) {
			continue
		}
		res := Result{Agent: lf.agent, Root: dir, Lockfile: path}
		if hasDeclared && baseAgent(declared) == lf.agent {
			res.Agent = declared
			res.Version = version
		}
		return res, true, nil
	}
	if hasDeclared {
		return Result{Agent: declared, Version: version, Root: dir}, true, nil
	}
	for _, wf := range workspaceFiles {
		if isFile(filepath.Join(dir, wf.name)) {
			return Result{Agent: wf.agent, Root: dir}, true, nil
		}
	}
	return Result{}, false, nil
}

func readPackageManager(dir string) (agents.Agent, string, bool, error) {
	value, err := manifest.ReadPackageManager(dir)
	if err != nil {
		// Битый package.json считаем манифестом без packageManager.
		if errors.Is(err, manifest.ErrNotFound) || errors.Is(err, manifest.ErrMalformed) {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	agent, version, ok := ParsePackageManager(value)
	return agent, version, ok, nil
}

// ParsePackageManager разбирает значение поля packageManager ("yarn@3.6.0+sha224.abc").
// yarn >= 2 становится yarn@berry, pnpm < 7 становится pnpm@6.
func ParsePackageManager(value string) (agents.Agent, string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", false
	}
	name, version, _ := strings.Cut(value, "@")
	version, _, _ = strings.Cut(version, "+")
	version = strings.TrimLeft(version, "^~v")
	major := -1
	if head, _, _ := strings.Cut(version, "."); head != "" {
		if n, err := strconv.Atoi(head); err == nil {
			major = n
		}
	}
	switch agents.Agent(name) {
	case agents.Yarn:
		if major >= 2 {
			return agents.YarnBerry, version, true
		}
		return agents.Yarn, version, true
	case agents.PNPM:
		if major >= 0 && major < 7 {
			return agents.PNPM6, version, true
		}
		return agents.PNPM, version, true
	case agents.NPM, agents.Bun, agents.Deno:
		return agents.Agent(name), version, true
	default:
		return "", "", false
	}
}

func baseAgent(a agents.Agent) agents.Agent {
	switch a {
	case agents.YarnBerry:
		return agents.Yarn
	case agents.PNPM6:
		return agents.PNPM
	default:
		return a
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
