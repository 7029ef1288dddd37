package cli

import (
	"errors"
	"fmt"
	"strings"

	"goni/internal/agents"
)

var errMissingOptionValue = errors.New("option requires a value")

// toolOptions управляют самим goni и снимаются только с начала списка аргументов;
// все остальное передается транслятору как есть.
type toolOptions struct {
	dir       string
	agent     agents.Agent
	printOnly bool
}

func parseToolOptions(args []string) (toolOptions, []string, error) {
	var opts toolOptions
	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "?":
			opts.printOnly = true
			i++
		case arg == "-C":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("-C: %w", errMissingOptionValue)
			}
			opts.dir = args[i+1]
			i += 2
		case arg == "--agent":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--agent: %w", errMissingOptionValue)
			}
			opts.agent = agents.Agent(args[i+1])
			i += 2
		case strings.HasPrefix(arg, "--agent="):
			opts.agent = agents.Agent(strings.TrimPrefix(arg, "--agent="))
			i++
		default:
			return opts, append([]string{}, args[i:]...), nil
		}
	}
	return opts, []string{}, nil
}
