package dispatcher

import (
	"context"
	"fmt"
	"runtime"

	"github.com/dshills/dokd/internal/dispatcher/handler"
	"github.com/dshills/dokd/internal/logging"
)

// Dispatcher routes actions to handlers and runs them.
type Dispatcher struct {
	registry *Registry
	config   Config
	logger   *logging.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger *logging.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a new dispatcher with the given configuration.
func New(config Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		config:   config,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults() *Dispatcher {
	return New(DefaultConfig())
}

// RegisterNamespace registers a namespace handler.
func (d *Dispatcher) RegisterNamespace(h handler.NamespaceHandler) {
	d.registry.RegisterNamespace(h)
}

// RegisterHandler registers a handler for an exact action name.
func (d *Dispatcher) RegisterHandler(actionName string, h handler.Handler) {
	d.registry.Register(actionName, h)
}

// RegisterHandlerFunc registers a handler function for an action name.
func (d *Dispatcher) RegisterHandlerFunc(actionName string, fn func(context.Context, handler.Action) handler.Result) {
	d.registry.Register(actionName, handler.NewHandlerFunc(fn))
}

// CanDispatch reports whether a handler exists for the action.
func (d *Dispatcher) CanDispatch(actionName string) bool {
	return d.registry.Route(actionName) != nil
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch executes an action synchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, action handler.Action) handler.Result {
	if action.Name == "" {
		return handler.Error(ErrInvalidAction)
	}

	h := d.registry.Route(action.Name)
	if h == nil {
		return handler.Error(fmt.Errorf("%w: %s", ErrNoHandler, action.Name))
	}

	if d.config.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.DefaultTimeout)
		defer cancel()
	}

	var result handler.Result
	if d.config.RecoverFromPanic {
		result = d.executeWithRecovery(ctx, h, action)
	} else {
		result = h.Handle(ctx, action)
	}

	if result.IsError() && ctx.Err() == context.DeadlineExceeded {
		result.Error = fmt.Errorf("%w: %s: %v", ErrTimeout, action.Name, result.Error)
	}

	d.logger.Debug("dispatched %s: %s", action.Name, result.Status)
	if result.IsError() {
		d.logger.WithField("action", action.Name).Error("%v", result.Error)
	}
	return result
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(ctx context.Context, h handler.Handler, action handler.Action) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			d.logger.Debug("panic stack for %s:\n%s", action.Name, stack[:n])
			result = handler.Error(fmt.Errorf("%w: %s: %v", ErrPanic, action.Name, r))
		}
	}()

	return h.Handle(ctx, action)
}
