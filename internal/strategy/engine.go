package strategy

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

func errSignalCount(rule string, got, want int) error {
	return fmt.Errorf("rule %q produced %d signals, want %d", rule, got, want)
}

// Engine is a registry of named rules.
type Engine struct {
	mu     sync.RWMutex
	rules  map[string]Rule
	logger *zap.Logger
}

// NewEngine creates a rule registry.
func NewEngine(logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{
		rules:  make(map[string]Rule),
		logger: l,
	}
}

// Register adds a rule to the engine.
func (e *Engine) Register(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.rules[r.Name()]; exists {
		e.logger.Warn("overwriting registered rule", zap.String("rule", r.Name()))
	}
	e.rules[r.Name()] = r
}

// Get retrieves a rule by name.
func (e *Engine) Get(name string) (Rule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rules[name]
	return r, ok
}

// Names returns the registered rule names.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.rules))
	for name := range e.rules {
		names = append(names, name)
	}
	return names
}
