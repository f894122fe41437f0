// Package handler provides the handler interface and types for action dispatch.
package handler

import "context"

// Handler processes a specific action or set of actions.
type Handler interface {
	// Handle executes the action and returns a result.
	Handle(ctx context.Context, action Action) Result

	// CanHandle returns true if this handler can process the action.
	CanHandle(actionName string) bool

	// Priority returns the handler priority (higher = checked first).
	Priority() int
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	fn   func(ctx context.Context, action Action) Result
	prio int
}

// NewHandlerFunc creates a HandlerFunc from a function.
func NewHandlerFunc(fn func(ctx context.Context, action Action) Result) *HandlerFunc {
	return &HandlerFunc{fn: fn}
}

// NewHandlerFuncWithPriority creates a HandlerFunc with a specified priority.
func NewHandlerFuncWithPriority(fn func(ctx context.Context, action Action) Result, priority int) *HandlerFunc {
	return &HandlerFunc{fn: fn, prio: priority}
}

// Handle implements Handler.Handle.
func (f *HandlerFunc) Handle(ctx context.Context, action Action) Result {
	if f.fn == nil {
		return Errorf("handler function is nil")
	}
	return f.fn(ctx, action)
}

// CanHandle implements Handler.CanHandle.
// HandlerFunc always returns true; caller must ensure correct routing.
func (f *HandlerFunc) CanHandle(actionName string) bool {
	return true
}

// Priority implements Handler.Priority.
func (f *HandlerFunc) Priority() int {
	return f.prio
}

// NamespaceHandler handles all actions within a namespace.
// A namespace is the prefix before the first dot ("dokd" in "dokd.buildAll").
type NamespaceHandler interface {
	// HandleAction handles an action within this namespace.
	HandleAction(ctx context.Context, action Action) Result

	// CanHandle returns true if this handler can process the action.
	CanHandle(actionName string) bool

	// Namespace returns the namespace prefix.
	Namespace() string
}

// namespaceAdapter adapts NamespaceHandler to Handler.
type namespaceAdapter struct {
	h NamespaceHandler
}

// NewNamespaceAdapter creates a Handler from a NamespaceHandler.
func NewNamespaceAdapter(h NamespaceHandler) Handler {
	return &namespaceAdapter{h: h}
}

func (a *namespaceAdapter) Handle(ctx context.Context, action Action) Result {
	return a.h.HandleAction(ctx, action)
}

func (a *namespaceAdapter) CanHandle(actionName string) bool {
	return a.h.CanHandle(actionName)
}

func (a *namespaceAdapter) Priority() int {
	return 0
}

// ActionFunc handles one action of a namespace.
type ActionFunc func(ctx context.Context, action Action) Result

// BaseNamespaceHandler dispatches namespace actions to registered functions.
type BaseNamespaceHandler struct {
	namespace string
	actions   map[string]ActionFunc
}

// NewBaseNamespaceHandler creates a new BaseNamespaceHandler.
func NewBaseNamespaceHandler(namespace string) *BaseNamespaceHandler {
	return &BaseNamespaceHandler{
		namespace: namespace,
		actions:   make(map[string]ActionFunc),
	}
}

// Register registers a handler function for a full action name.
func (h *BaseNamespaceHandler) Register(actionName string, fn ActionFunc) {
	h.actions[actionName] = fn
}

// Namespace implements NamespaceHandler.Namespace.
func (h *BaseNamespaceHandler) Namespace() string {
	return h.namespace
}

// CanHandle implements NamespaceHandler.CanHandle.
func (h *BaseNamespaceHandler) CanHandle(actionName string) bool {
	_, ok := h.actions[actionName]
	return ok
}

// HandleAction implements NamespaceHandler.HandleAction.
func (h *BaseNamespaceHandler) HandleAction(ctx context.Context, action Action) Result {
	fn, ok := h.actions[action.Name]
	if !ok {
		return Errorf("unknown action in namespace %s: %s", h.namespace, action.Name)
	}
	return fn(ctx, action)
}
