package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/davidbz/pressroom/internal/domain"
)

// Registry implements the domain.InvokerRegistry interface.
type Registry struct {
	mu       sync.RWMutex
	invokers map[string]domain.Invoker
}

// NewRegistry creates a new invoker registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:       sync.RWMutex{},
		invokers: make(map[string]domain.Invoker),
	}
}

// Register adds an invoker to the registry.
func (r *Registry) Register(_ context.Context, invoker domain.Invoker) error {
	if invoker == nil {
		return errors.New("invoker cannot be nil")
	}

	name := invoker.Name()
	if name == "" {
		return errors.New("invoker name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invokers[name]; exists {
		return fmt.Errorf("invoker %s already registered", name)
	}

	r.invokers[name] = invoker
	return nil
}

// Get retrieves an invoker by name.
func (r *Registry) Get(_ context.Context, name string) (domain.Invoker, error) {
	if name == "" {
		return nil, errors.New("invoker name cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	invoker, exists := r.invokers[name]
	if !exists {
		return nil, fmt.Errorf("invoker %s not found (available: %s)", name, strings.Join(r.namesLocked(), ", "))
	}

	return invoker, nil
}

// List returns all registered invoker names in sorted order.
func (r *Registry) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.namesLocked(), nil
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.invokers))
	for name := range r.invokers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
