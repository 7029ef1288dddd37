package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"goni/internal/agents"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewDefaultRegistry(agents.DefaultTable())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return r
}

type translateCase struct {
	name  string
	agent agents.Agent
	args  []string
	rctx  RunnerContext
	want  ResolvedCommand
}

func runCases(t *testing.T, op Operation, cases []translateCase) {
	t.Helper()
	r := newTestRegistry(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Execute(op, tc.agent, tc.args, tc.rctx)
			if err != nil {
				t.Fatalf("translate: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func cmdOf(command string, args ...string) ResolvedCommand {
	if args == nil {
		args = []string{}
	}
	return ResolvedCommand{Command: command, Args: args}
}

func TestRunDefaultsToStart(t *testing.T) {
	var cases []translateCase
	for _, tc := range []struct {
		agent agents.Agent
		exec  string
	}{
		{agents.NPM, "npm"},
		{agents.Yarn, "yarn"},
		{agents.YarnBerry, "yarn"},
		{agents.PNPM, "pnpm"},
		{agents.Bun, "bun"},
	} {
		cases = append(cases, translateCase{
			name:  string(tc.agent),
			agent: tc.agent,
			want:  cmdOf(tc.exec, "run", "start"),
		})
	}
	runCases(t, OpRun, cases)
}

func TestRunScripts(t *testing.T) {
	runCases(t, OpRun, []translateCase{
		{name: "npm script", agent: agents.NPM, args: []string{"dev"}, want: cmdOf("npm", "run", "dev")},
		{name: "npm colon", agent: agents.NPM, args: []string{"build:dev"}, want: cmdOf("npm", "run", "build:dev")},
		{name: "npm with arguments", agent: agents.NPM, args: []string{"build", "--watch", "-o"}, want: cmdOf("npm", "run", "build", "--", "--watch", "-o")},
		{name: "yarn with arguments", agent: agents.Yarn, args: []string{"build", "--watch", "-o"}, want: cmdOf("yarn", "run", "build", "--watch", "-o")},
		{name: "pnpm with arguments", agent: agents.PNPM, args: []string{"build", "--watch", "-o"}, want: cmdOf("pnpm", "run", "build", "--watch", "-o")},
		{name: "bun with arguments", agent: agents.Bun, args: []string{"build", "--watch", "-o"}, want: cmdOf("bun", "run", "build", "--watch", "-o")},
		{name: "bun colon", agent: agents.Bun, args: []string{"build:dev"}, want: cmdOf("bun", "run", "build:dev")},
		{name: "deno task", agent: agents.Deno, args: []string{"dev"}, want: cmdOf("deno", "task", "dev")},
		{name: "bun keeps -D", agent: agents.Bun, args: []string{"dev", "-D"}, want: cmdOf("bun", "run", "dev", "-D")},
	})
}

func TestRunIfPresent(t *testing.T) {
	var cases []translateCase
	for _, agent := range []agents.Agent{agents.NPM, agents.Yarn, agents.PNPM, agents.Bun} {
		cases = append(cases, translateCase{
			name:  string(agent),
			agent: agent,
			args:  []string{"test", "--if-present"},
			want:  cmdOf(string(agent), "run", "--if-present", "test"),
		})
	}
	cases = append(cases,
		translateCase{
			name:  "npm with trailing args",
			agent: agents.NPM,
			args:  []string{"--if-present", "build", "--watch", "-o"},
			want:  cmdOf("npm", "run", "--if-present", "build", "--", "--watch", "-o"),
		},
		translateCase{
			name:  "only flag",
			agent: agents.PNPM,
			args:  []string{"--if-present"},
			want:  cmdOf("pnpm", "run", "--if-present"),
		},
	)
	runCases(t, OpRun, cases)
}

func TestRunIfPresentWithBareTemplate(t *testing.T) {
	table := agents.DefaultTable().Merge(map[string]map[string][]string{
		"nx": {"run": {"nx", agents.TokenArgs}},
	})
	r, err := NewDefaultRegistry(table)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	got, err := r.Execute(OpRun, "nx", []string{"build", "--if-present"}, RunnerContext{})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if diff := cmp.Diff(cmdOf("nx", "build", "--if-present"), got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestInstall(t *testing.T) {
	runCases(t, OpInstall, []translateCase{
		{name: "empty", agent: agents.NPM, want: cmdOf("npm", "i")},
		{name: "only flags", agent: agents.PNPM, args: []string{"--prefer-offline"}, want: cmdOf("pnpm", "i", "--prefer-offline")},
		{name: "add packages", agent: agents.NPM, args: []string{"axios", "-D"}, want: cmdOf("npm", "i", "axios", "-D")},
		{name: "add yarn", agent: agents.Yarn, args: []string{"vite"}, want: cmdOf("yarn", "add", "vite")},
		{name: "global", agent: agents.NPM, args: []string{"-g", "eslint"}, want: cmdOf("npm", "i", "-g", "eslint")},
		{name: "global yarn", agent: agents.Yarn, args: []string{"eslint", "-g"}, want: cmdOf("yarn", "global", "add", "eslint")},
		{name: "global berry uses npm", agent: agents.YarnBerry, args: []string{"-g", "eslint"}, want: cmdOf("npm", "i", "-g", "eslint")},
		{name: "frozen", agent: agents.PNPM, args: []string{"--frozen"}, want: cmdOf("pnpm", "i", "--frozen-lockfile")},
		{name: "frozen npm", agent: agents.NPM, args: []string{"--frozen"}, want: cmdOf("npm", "ci")},
		{name: "frozen berry", agent: agents.YarnBerry, args: []string{"--frozen"}, want: cmdOf("yarn", "install", "--immutable")},
		{
			name:  "frozen if present with lock",
			agent: agents.NPM,
			args:  []string{"--frozen-if-present"},
			rctx:  RunnerContext{}.WithLock(true),
			want:  cmdOf("npm", "ci"),
		},
		{
			name:  "frozen if present without lock",
			agent: agents.NPM,
			args:  []string{"--frozen-if-present"},
			rctx:  RunnerContext{}.WithLock(false),
			want:  cmdOf("npm", "i"),
		},
		{
			name:  "frozen if present keeps other flags",
			agent: agents.Yarn,
			args:  []string{"--frozen-if-present", "--ignore-scripts"},
			rctx:  RunnerContext{}.WithLock(true),
			want:  cmdOf("yarn", "install", "--frozen-lockfile", "--ignore-scripts"),
		},
	})
}

func TestInstallFrozenIfPresentRequiresLockState(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Execute(OpInstall, agents.NPM, []string{"--frozen-if-present"}, RunnerContext{})
	if !errors.Is(err, ErrContextContract) {
		t.Fatalf("expected ErrContextContract, got %v", err)
	}
}

func TestInstallBunDevFlag(t *testing.T) {
	runCases(t, OpInstall, []translateCase{
		{name: "bun add dev", agent: agents.Bun, args: []string{"-D", "vite"}, want: cmdOf("bun", "add", "-d", "vite")},
		{name: "bun install dev", agent: agents.Bun, args: []string{"-D"}, want: cmdOf("bun", "install", "-d")},
		{name: "bun global", agent: agents.Bun, args: []string{"-g", "-D", "x"}, want: cmdOf("bun", "add", "-g", "-d", "x")},
		{name: "npm untouched", agent: agents.NPM, args: []string{"-D", "vite"}, want: cmdOf("npm", "i", "-D", "vite")},
		{name: "pnpm untouched", agent: agents.PNPM, args: []string{"-D", "vite"}, want: cmdOf("pnpm", "add", "-D", "vite")},
	})
}

func TestUpgrade(t *testing.T) {
	runCases(t, OpUpgrade, []translateCase{
		{name: "npm", agent: agents.NPM, want: cmdOf("npm", "update")},
		{name: "yarn", agent: agents.Yarn, args: []string{"react"}, want: cmdOf("yarn", "upgrade", "react")},
		{name: "berry", agent: agents.YarnBerry, want: cmdOf("yarn", "up")},
		{name: "interactive yarn", agent: agents.Yarn, args: []string{"-i"}, want: cmdOf("yarn", "upgrade-interactive")},
		{name: "interactive berry", agent: agents.YarnBerry, args: []string{"-i"}, want: cmdOf("yarn", "up", "-i")},
		{name: "interactive pnpm", agent: agents.PNPM, args: []string{"-i", "--latest"}, want: cmdOf("pnpm", "update", "-i", "--latest")},
		{name: "interactive bun", agent: agents.Bun, args: []string{"-i"}, want: cmdOf("bun", "update")},
	})
}

func TestUpgradeInteractiveUnsupportedByNPM(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Execute(OpUpgrade, agents.NPM, []string{"-i"}, RunnerContext{})
	if !errors.Is(err, ErrUnsupportedVerb) {
		t.Fatalf("expected ErrUnsupportedVerb, got %v", err)
	}
}

func TestUninstall(t *testing.T) {
	runCases(t, OpUninstall, []translateCase{
		{name: "npm", agent: agents.NPM, args: []string{"axios"}, want: cmdOf("npm", "uninstall", "axios")},
		{name: "yarn", agent: agents.Yarn, args: []string{"axios"}, want: cmdOf("yarn", "remove", "axios")},
		{name: "pnpm global", agent: agents.PNPM, args: []string{"-g", "typescript"}, want: cmdOf("pnpm", "remove", "--global", "typescript")},
		{name: "bun global", agent: agents.Bun, args: []string{"typescript", "-g"}, want: cmdOf("bun", "remove", "-g", "typescript")},
		{name: "yarn global", agent: agents.Yarn, args: []string{"-g", "x"}, want: cmdOf("yarn", "global", "remove", "x")},
	})
}

func TestExecute(t *testing.T) {
	runCases(t, OpExecute, []translateCase{
		{name: "npm", agent: agents.NPM, args: []string{"vitest", "--run"}, want: cmdOf("npx", "vitest", "--run")},
		{name: "yarn", agent: agents.Yarn, args: []string{"vitest"}, want: cmdOf("npx", "vitest")},
		{name: "berry", agent: agents.YarnBerry, args: []string{"vitest"}, want: cmdOf("yarn", "dlx", "vitest")},
		{name: "pnpm", agent: agents.PNPM, args: []string{"vitest"}, want: cmdOf("pnpm", "dlx", "vitest")},
		{name: "bun", agent: agents.Bun, args: []string{"vitest", "-g"}, want: cmdOf("bunx", "vitest", "-g")},
	})
}

func TestAgent(t *testing.T) {
	runCases(t, OpAgent, []translateCase{
		{name: "npm", agent: agents.NPM, args: []string{"--version"}, want: cmdOf("npm", "--version")},
		{name: "pnpm", agent: agents.PNPM, args: []string{"store", "prune"}, want: cmdOf("pnpm", "store", "prune")},
		{name: "bun empty", agent: agents.Bun, want: cmdOf("bun")},
	})
}

func TestTranslateUnknownAgent(t *testing.T) {
	r := newTestRegistry(t)
	for _, op := range Operations {
		_, err := r.Execute(op, "xxx", []string{"dev"}, RunnerContext{}.WithLock(false))
		if !errors.Is(err, ErrUnsupportedAgent) {
			t.Fatalf("%s: expected ErrUnsupportedAgent, got %v", op, err)
		}
	}
}

func TestIsGlobal(t *testing.T) {
	if !IsGlobal(OpInstall, []string{"-g", "x"}) {
		t.Fatalf("install -g should be global")
	}
	if !IsGlobal(OpUninstall, []string{"x", "-g"}) {
		t.Fatalf("uninstall -g should be global")
	}
	if IsGlobal(OpRun, []string{"-g"}) {
		t.Fatalf("run is never global")
	}
}
