package core

import (
	"errors"
	"fmt"
	"sort"

	"goni/internal/agents"
)

var (
	errTranslatorExists = errors.New("translator already registered")
	errInvalidArguments = errors.New("invalid arguments")

	// ErrUnknownOperation возвращается для операции без транслятора.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Registry хранит трансляторы по канонической операции.
type Registry struct {
	translators map[Operation]Translator
}

// NewRegistry создает пустой реестр.
func NewRegistry() *Registry {
	return &Registry{translators: make(map[Operation]Translator)}
}

// NewDefaultRegistry регистрирует трансляторы всех операций поверх таблицы.
func NewDefaultRegistry(table agents.Table) (*Registry, error) {
	r := NewRegistry()
	for _, t := range Translators(NewResolver(table)) {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register добавляет транслятор; операция должна быть уникальной.
func (r *Registry) Register(t Translator) error {
	if t == nil {
		return fmt.Errorf("translator is nil: %w", errInvalidArguments)
	}
	op := t.Operation()
	if op == "" {
		return fmt.Errorf("translator operation is empty: %w", errInvalidArguments)
	}
	if _, exists := r.translators[op]; exists {
		return fmt.Errorf("%s: %w", op, errTranslatorExists)
	}
	r.translators[op] = t
	return nil
}

// Execute переводит операцию в команду агента.
func (r *Registry) Execute(op Operation, agent agents.Agent, args []string, rctx RunnerContext) (ResolvedCommand, error) {
	t, ok := r.translators[op]
	if !ok {
		return ResolvedCommand{}, fmt.Errorf("%s: %w", op, ErrUnknownOperation)
	}
	return t.Translate(agent, args, rctx)
}

// Operations возвращает отсортированный список зарегистрированных операций.
func (r *Registry) Operations() []Operation {
	ops := make([]Operation, 0, len(r.translators))
	for op := range r.translators {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
