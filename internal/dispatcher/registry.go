package dispatcher

import (
	"sort"
	"strings"
	"sync"

	"github.com/dshills/dokd/internal/dispatcher/handler"
)

// Registry maps action names to handlers. Namespace handlers are consulted
// first, then handlers registered for the exact action name.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]handler.NamespaceHandler
	handlers   map[string][]handler.Handler // sorted by priority, highest first
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		namespaces: make(map[string]handler.NamespaceHandler),
		handlers:   make(map[string][]handler.Handler),
	}
}

// RegisterNamespace registers a handler for all actions in its namespace.
func (r *Registry) RegisterNamespace(h handler.NamespaceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[h.Namespace()] = h
}

// Register adds a handler for an exact action name.
func (r *Registry) Register(actionName string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append(r.handlers[actionName], h)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority() > handlers[j].Priority()
	})
	r.handlers[actionName] = handlers
}

// Unregister removes all exact-name handlers for an action.
func (r *Registry) Unregister(actionName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, actionName)
}

// Route returns the handler for an action, or nil.
func (r *Registry) Route(actionName string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ns := ExtractNamespace(actionName); ns != "" {
		if h, ok := r.namespaces[ns]; ok && h.CanHandle(actionName) {
			return handler.NewNamespaceAdapter(h)
		}
	}

	for _, h := range r.handlers[actionName] {
		if h.CanHandle(actionName) {
			return h
		}
	}
	return nil
}

// Namespaces returns the registered namespace names, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtractNamespace returns the part of "namespace.action" before the first
// dot, or "" if there is none.
func ExtractNamespace(actionName string) string {
	idx := strings.Index(actionName, ".")
	if idx < 0 {
		return ""
	}
	return actionName[:idx]
}
