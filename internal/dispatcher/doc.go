// Package dispatcher routes named actions to handlers.
//
// Action names are namespaced ("dokd.buildAll", "task.run"). A
// NamespaceHandler claims every action of its namespace; plain handlers can
// also be registered for an exact name:
//
//	d := dispatcher.NewWithDefaults()
//	d.RegisterNamespace(dokdhandler.New(commands))
//
//	result := d.Dispatch(ctx, handler.Action{Name: "dokd.buildAll"})
//	if result.IsError() {
//	    return result.Error
//	}
//
// Handlers run synchronously on the caller's goroutine. Panics are turned
// into error results when RecoverFromPanic is set.
package dispatcher
