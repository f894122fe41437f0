package handler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/dokd/internal/dispatcher/handler"
)

func TestHandlerFunc(t *testing.T) {
	called := false
	fn := handler.NewHandlerFunc(func(ctx context.Context, action handler.Action) handler.Result {
		called = true
		return handler.Success()
	})

	result := fn.Handle(context.Background(), handler.Action{Name: "test"})

	assert.True(t, called)
	assert.True(t, result.IsOK())
	assert.True(t, fn.CanHandle("anything"))
	assert.Equal(t, 0, fn.Priority())
}

func TestHandlerFuncNil(t *testing.T) {
	fn := &handler.HandlerFunc{}

	result := fn.Handle(context.Background(), handler.Action{Name: "test"})
	assert.True(t, result.IsError())
}

func TestHandlerFuncWithPriority(t *testing.T) {
	fn := handler.NewHandlerFuncWithPriority(func(context.Context, handler.Action) handler.Result {
		return handler.NoOp()
	}, 7)

	assert.Equal(t, 7, fn.Priority())
}

func TestBaseNamespaceHandler(t *testing.T) {
	h := handler.NewBaseNamespaceHandler("dokd")
	h.Register("dokd.buildAll", func(ctx context.Context, action handler.Action) handler.Result {
		return handler.SuccessWithMessage("built")
	})

	assert.Equal(t, "dokd", h.Namespace())
	assert.True(t, h.CanHandle("dokd.buildAll"))
	assert.False(t, h.CanHandle("dokd.other"))

	result := h.HandleAction(context.Background(), handler.Action{Name: "dokd.buildAll"})
	assert.Equal(t, "built", result.Message)

	result = h.HandleAction(context.Background(), handler.Action{Name: "dokd.other"})
	assert.True(t, result.IsError())

	adapter := handler.NewNamespaceAdapter(h)
	assert.True(t, adapter.CanHandle("dokd.buildAll"))
	assert.Equal(t, "built", adapter.Handle(context.Background(), handler.Action{Name: "dokd.buildAll"}).Message)
}

func TestArgs(t *testing.T) {
	args := handler.Args{"name": "Web", "force": true, "count": 3}

	assert.Equal(t, "Web", args.GetString("name"))
	assert.Equal(t, "", args.GetString("count"))
	assert.Equal(t, "", args.GetString("missing"))
	assert.True(t, args.GetBool("force"))
	assert.False(t, args.GetBool("name"))
	assert.True(t, args.Has("name"))
	assert.False(t, args.Has("missing"))

	var nilArgs handler.Args
	assert.Equal(t, "", nilArgs.GetString("name"))
}

func TestResultStatus_String(t *testing.T) {
	tests := map[handler.ResultStatus]string{
		handler.StatusOK:         "ok",
		handler.StatusNoOp:       "no-op",
		handler.StatusError:      "error",
		handler.StatusAsync:      "async",
		handler.StatusCancelled:  "cancelled",
		handler.ResultStatus(99): "unknown",
	}
	for status, want := range tests {
		assert.Equal(t, want, status.String())
	}
}

func TestResultConstructors(t *testing.T) {
	boom := errors.New("boom")

	assert.Equal(t, handler.StatusNoOp, handler.NoOpWithMessage("x").Status)
	assert.Equal(t, handler.StatusCancelled, handler.CancelledWithMessage("x").Status)
	assert.Equal(t, handler.StatusCancelled, handler.Cancelled().Status)
	assert.Equal(t, handler.StatusAsync, handler.Async().Status)
	assert.ErrorIs(t, handler.Error(boom).Error, boom)
	assert.EqualError(t, handler.Errorf("bad %d", 1).Error, "bad 1")
}

func TestResultData(t *testing.T) {
	base := handler.Success().WithData("count", 3)
	derived := base.WithData("name", "Web").WithMessage("done")

	assert.Equal(t, 3, derived.GetDataInt("count"))
	assert.Equal(t, "Web", derived.GetDataString("name"))
	assert.Equal(t, "done", derived.Message)

	_, ok := base.GetData("name")
	assert.False(t, ok, "WithData must not modify the receiver")

	assert.Equal(t, 0, handler.Success().GetDataInt("count"))
	assert.Equal(t, "", handler.Success().GetDataString("name"))
	assert.Equal(t, 2, handler.Success().WithData("f", 2.0).GetDataInt("f"))
}
