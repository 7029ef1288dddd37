package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"goni/internal/agents"
	"goni/internal/app"
	"goni/internal/core"
	"goni/internal/detect"
	"goni/internal/manifest"
	"goni/internal/storage"
	"goni/internal/transports/common"
)

var errHistoryDisabled = errors.New("history is disabled")

// New создает корневую CLI-команду.
func New(a *app.App, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "goni",
		Short:         "Единые команды для npm, yarn, pnpm, bun и deno",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newVersionCmd(version))
	root.AddCommand(newOperationCmd(a, core.OpInstall, "ni", "Установить зависимости или добавить пакеты"))
	root.AddCommand(newOperationCmd(a, core.OpRun, "nr", "Запустить скрипт из package.json"))
	root.AddCommand(newOperationCmd(a, core.OpUpgrade, "nu", "Обновить зависимости"))
	root.AddCommand(newOperationCmd(a, core.OpUninstall, "nun", "Удалить пакеты"))
	root.AddCommand(newOperationCmd(a, core.OpExecute, "nlx", "Выполнить бинарь пакета без установки"))
	root.AddCommand(newOperationCmd(a, core.OpAgent, "na", "Передать аргументы агенту как есть"))
	root.AddCommand(newTranslateCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newScriptsCmd())
	root.AddCommand(newDetectCmd())

	return root
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version)
		},
	}
}

func newOperationCmd(a *app.App, op core.Operation, alias, short string) *cobra.Command {
	return &cobra.Command{
		Use:                string(op) + " [-C dir] [--agent name] [?] [args...]",
		Aliases:            []string{alias},
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, rest, err := parseToolOptions(args)
			if err != nil {
				return err
			}
			cwd, err := workDir(opts.dir)
			if err != nil {
				return err
			}
			res, err := a.Service.Resolve(cmd.Context(), common.Request{
				Operation: op,
				Args:      rest,
				Cwd:       cwd,
				Agent:     opts.agent,
				NoHistory: opts.printOnly,
			})
			if err != nil {
				return err
			}
			if opts.printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), res.Command.String())
				return nil
			}
			echoCommand(cmd.ErrOrStderr(), res.Command)
			return a.Runner.Run(cmd.Context(), res.Command, cwd)
		},
	}
}

func newTranslateCmd(a *app.App) *cobra.Command {
	var (
		dir    string
		agent  string
		quote  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "translate <line>",
		Short: "Показать команду агента для строки вида \"nr dev --port 3000\"",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, opArgs, err := common.ParseTextCommand(strings.Join(args, " "))
			if err != nil {
				return err
			}
			cwd, err := workDir(dir)
			if err != nil {
				return err
			}
			res, err := a.Service.Resolve(cmd.Context(), common.Request{
				Operation:    op,
				Args:         opArgs,
				Cwd:          cwd,
				Agent:        agentOf(agent),
				Programmatic: true,
				NoHistory:    true,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res.Command)
			}
			line, err := formatCommand(res.Command, quote)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", "", "рабочий каталог")
	cmd.Flags().StringVar(&agent, "agent", "", "агент вместо автоопределения")
	cmd.Flags().StringVar(&quote, "quote", "plain", "экранирование: plain или posix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывести команду в JSON")
	// Все после первого позиционного аргумента относится к транслируемой строке.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newHistoryCmd(a *app.App) *cobra.Command {
	var (
		dir    string
		all    bool
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Показать историю запущенных команд",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.Store == nil {
				return errHistoryDisabled
			}
			q := storage.HistoryQuery{Limit: limit}
			if !all {
				cwd, err := workDir(dir)
				if err != nil {
					return err
				}
				q.Cwd = cwd
			}
			records, err := a.Store.QueryHistory(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, rec := range records {
				line := core.ResolvedCommand{Command: rec.Command, Args: rec.Args}.String()
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.TS.Local().Format(time.DateTime), rec.Agent, line)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", "", "рабочий каталог")
	cmd.Flags().BoolVar(&all, "all", false, "история всех каталогов")
	cmd.Flags().IntVar(&limit, "limit", 20, "число записей (не более 200)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывести в JSON")
	return cmd
}

func newScriptsCmd() *cobra.Command {
	var (
		dir    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Показать скрипты из package.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workDir(dir)
			if err != nil {
				return err
			}
			m, err := manifest.Read(cwd)
			if err != nil {
				return err
			}
			scripts := m.ScriptList()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), scripts)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range scripts {
				desc := s.Description
				if desc == "" {
					desc = s.Command
				}
				fmt.Fprintf(tw, "%s\t%s\n", s.Name, desc)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", "", "рабочий каталог")
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывести в JSON")
	return cmd
}

func newDetectCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Определить пакетный менеджер каталога",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workDir(dir)
			if err != nil {
				return err
			}
			res, err := detect.Detect(cwd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", "", "рабочий каталог")
	return cmd
}

func workDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("working directory %s: %w", dir, err)
	}
	return abs, nil
}

func formatCommand(c core.ResolvedCommand, quote string) (string, error) {
	switch quote {
	case "", "plain":
		return c.String(), nil
	case "posix":
		return core.SerializePOSIX(c)
	default:
		return "", fmt.Errorf("unknown quote mode %q", quote)
	}
}

func echoCommand(w io.Writer, c core.ResolvedCommand) {
	color.New(color.FgCyan).Fprintf(w, "$ %s\n", c.String())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func agentOf(name string) agents.Agent {
	return agents.Agent(strings.TrimSpace(name))
}
