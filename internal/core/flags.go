package core

import "strings"

// ControlFlag влияет на выбор verb и не передается агенту как есть.
type ControlFlag string

const (
	FlagGlobal          ControlFlag = "-g"
	FlagFrozenIfPresent ControlFlag = "--frozen-if-present"
	FlagFrozen          ControlFlag = "--frozen"
	FlagIfPresent       ControlFlag = "--if-present"
	FlagInteractive     ControlFlag = "-i"
)

const (
	devFlag    = "-D"
	bunDevFlag = "-d"
)

type controlFlags map[ControlFlag]struct{}

// scanFlags проходит args один раз и отмечает распознанные флаги.
func scanFlags(args []string, known ...ControlFlag) controlFlags {
	found := make(controlFlags, len(known))
	for _, arg := range args {
		for _, f := range known {
			if arg == string(f) {
				found[f] = struct{}{}
			}
		}
	}
	return found
}

func (c controlFlags) has(f ControlFlag) bool {
	_, ok := c[f]
	return ok
}

// Exclude возвращает новый срез без элементов, в точности равных flag.
func Exclude(args []string, flag string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != flag {
			out = append(out, arg)
		}
	}
	return out
}

func isFlagLike(arg string) bool {
	return strings.HasPrefix(arg, "-")
}

func allFlags(args []string) bool {
	for _, arg := range args {
		if !isFlagLike(arg) {
			return false
		}
	}
	return true
}

func rewriteDevFlag(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if arg == devFlag {
			arg = bunDevFlag
		}
		out[i] = arg
	}
	return out
}
