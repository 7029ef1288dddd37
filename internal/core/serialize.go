package core

import (
	"fmt"
	"strings"
	"unicode"

	"mvdan.cc/sh/v3/syntax"
)

// Serialize склеивает команду в одну строку для показа пользователю.
// Аргументы с пробельными символами берутся в одинарные кавычки;
// вложенные кавычки не экранируются.
func Serialize(cmd ResolvedCommand) string {
	if len(cmd.Args) == 0 {
		return cmd.Command
	}
	parts := make([]string, 0, len(cmd.Args)+1)
	parts = append(parts, cmd.Command)
	for _, arg := range cmd.Args {
		if strings.IndexFunc(arg, unicode.IsSpace) >= 0 {
			arg = "'" + arg + "'"
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// SerializePOSIX экранирует каждое слово по правилам POSIX shell,
// так что строку можно безопасно вставить в sh.
func SerializePOSIX(cmd ResolvedCommand) (string, error) {
	words := append([]string{cmd.Command}, cmd.Args...)
	parts := make([]string, 0, len(words))
	for _, w := range words {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("quote %q: %w", w, err)
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " "), nil
}
