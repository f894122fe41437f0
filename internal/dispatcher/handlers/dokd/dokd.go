// Package dokd provides the handler for the dokd.* commands.
package dokd

import (
	"context"
	"errors"

	"github.com/dshills/dokd/internal/dispatcher/handler"
	"github.com/dshills/dokd/internal/dokd"
)

// Commands runs DOK Dsc commands.
type Commands interface {
	InitWorkspace() error
	RestoreModules() error
	BuildAll() error
	NewCollection(ctx context.Context) error
	NewCollectionNamed(name string) error
}

// Handler handles the dokd namespace.
type Handler struct {
	*handler.BaseNamespaceHandler
	commands Commands
}

// New creates a handler for the dokd commands.
func New(commands Commands) *Handler {
	h := &Handler{
		BaseNamespaceHandler: handler.NewBaseNamespaceHandler("dokd"),
		commands:             commands,
	}

	h.Register(dokd.CommandInitWorkspace, h.simple(commands.InitWorkspace))
	h.Register(dokd.CommandRestoreModules, h.simple(commands.RestoreModules))
	h.Register(dokd.CommandBuildAll, h.simple(commands.BuildAll))
	h.Register(dokd.CommandNewCollection, h.newCollection)

	return h
}

func (h *Handler) simple(fn func() error) handler.ActionFunc {
	return func(ctx context.Context, action handler.Action) handler.Result {
		return result(fn())
	}
}

// newCollection prompts for a name unless the action carries one.
func (h *Handler) newCollection(ctx context.Context, action handler.Action) handler.Result {
	if action.Args.Has("name") {
		return result(h.commands.NewCollectionNamed(action.Args.GetString("name")))
	}
	return result(h.commands.NewCollection(ctx))
}

// result maps a command error to a handler result.
func result(err error) handler.Result {
	switch {
	case err == nil:
		return handler.Success()
	case errors.Is(err, dokd.ErrNoWorkspace):
		return handler.NoOpWithMessage("no workspace open")
	case errors.Is(err, dokd.ErrPromptCancelled):
		return handler.Cancelled()
	default:
		return handler.Error(err)
	}
}
