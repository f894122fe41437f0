// Package tasks provides the handler for task.* actions.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/dokd/internal/dispatcher/handler"
	"github.com/dshills/dokd/internal/integration/task"
)

// Task action names.
const (
	ActionTaskList   = "task.list"   // List available tasks
	ActionTaskRun    = "task.run"    // Run a task
	ActionTaskStop   = "task.stop"   // Stop a running task
	ActionTaskStatus = "task.status" // Get task execution status
	ActionTaskOutput = "task.output" // Get task output
)

// TaskProvider lists the workspace's tasks.
type TaskProvider interface {
	ProvideTasks(ctx context.Context) ([]*task.Task, error)
	FindTask(ctx context.Context, label string) (*task.Task, bool, error)
}

// TaskExecutor provides task execution.
type TaskExecutor interface {
	// Execute runs a task.
	Execute(ctx context.Context, task *task.Task) (*task.Execution, error)

	// GetExecution returns an execution by ID.
	GetExecution(id string) (*task.Execution, bool)

	// ListExecutions returns all executions.
	ListExecutions() []*task.Execution

	// CancelExecution cancels an execution.
	CancelExecution(id string) error
}

// Handler handles task-related actions.
type Handler struct {
	*handler.BaseNamespaceHandler
	provider TaskProvider
	executor TaskExecutor

	// runCtx outlives the action that starts a task.
	runCtx context.Context
}

// New creates a task handler. Started tasks run until runCtx is done or
// they are stopped.
func New(runCtx context.Context, provider TaskProvider, executor TaskExecutor) *Handler {
	h := &Handler{
		BaseNamespaceHandler: handler.NewBaseNamespaceHandler("task"),
		provider:             provider,
		executor:             executor,
		runCtx:               runCtx,
	}

	h.Register(ActionTaskList, h.list)
	h.Register(ActionTaskRun, h.run)
	h.Register(ActionTaskStop, h.stop)
	h.Register(ActionTaskStatus, h.status)
	h.Register(ActionTaskOutput, h.output)

	return h
}

func (h *Handler) list(ctx context.Context, action handler.Action) handler.Result {
	tasks, err := h.provider.ProvideTasks(ctx)
	if err != nil {
		return handler.Error(err)
	}

	taskInfos := make([]map[string]string, len(tasks))
	for i, t := range tasks {
		taskInfos[i] = map[string]string{
			"name":        t.Name,
			"source":      t.Source,
			"group":       string(t.Group),
			"description": t.Description,
			"command":     t.Command,
		}
	}

	return handler.Success().
		WithData("tasks", taskInfos).
		WithData("count", len(tasks)).
		WithMessage(formatTaskList(tasks))
}

func (h *Handler) run(ctx context.Context, action handler.Action) handler.Result {
	taskName := action.Args.GetString("name")
	if taskName == "" {
		return handler.Errorf("task.run: task name required")
	}

	t, ok, err := h.provider.FindTask(ctx, taskName)
	if err != nil {
		return handler.Error(err)
	}
	if !ok {
		return handler.Errorf("task.run: task %q not found", taskName)
	}

	exec, err := h.executor.Execute(h.runCtx, t)
	if err != nil {
		return handler.Error(fmt.Errorf("task.run: %w", err))
	}

	return handler.Success().
		WithData("executionId", exec.ID).
		WithData("task", taskName).
		WithMessage("Started task: " + taskName + " (id: " + exec.ID + ")")
}

func (h *Handler) stop(ctx context.Context, action handler.Action) handler.Result {
	execID := action.Args.GetString("id")
	if execID == "" {
		return handler.Errorf("task.stop: execution id required")
	}

	if err := h.executor.CancelExecution(execID); err != nil {
		return handler.Error(err)
	}

	return handler.Success().
		WithData("executionId", execID).
		WithMessage("Stopped execution: " + execID)
}

func (h *Handler) status(ctx context.Context, action handler.Action) handler.Result {
	execID := action.Args.GetString("id")
	if execID == "" {
		executions := h.executor.ListExecutions()

		execInfos := make([]map[string]any, len(executions))
		for i, exec := range executions {
			execInfos[i] = map[string]any{
				"id":       exec.ID,
				"task":     exec.Task.Name,
				"state":    string(exec.State()),
				"exitCode": exec.ExitCode(),
			}
		}

		return handler.Success().
			WithData("executions", execInfos).
			WithData("count", len(executions)).
			WithMessage(formatExecutionList(executions))
	}

	exec, ok := h.executor.GetExecution(execID)
	if !ok {
		return handler.Errorf("task.status: execution %q not found", execID)
	}

	return handler.Success().
		WithData("id", exec.ID).
		WithData("task", exec.Task.Name).
		WithData("state", string(exec.State())).
		WithData("exitCode", exec.ExitCode()).
		WithData("duration", exec.Duration().String()).
		WithMessage(formatExecutionStatus(exec))
}

func (h *Handler) output(ctx context.Context, action handler.Action) handler.Result {
	execID := action.Args.GetString("id")
	if execID == "" {
		return handler.Errorf("task.output: execution id required")
	}

	exec, ok := h.executor.GetExecution(execID)
	if !ok {
		return handler.Errorf("task.output: execution %q not found", execID)
	}

	lines := exec.Output()
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line.Content)
		sb.WriteByte('\n')
	}
	output := sb.String()

	return handler.Success().
		WithData("output", output).
		WithData("lineCount", len(lines)).
		WithMessage(output)
}

func formatTaskList(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found"
	}

	var sb strings.Builder
	sb.WriteString("Available tasks:\n")
	for _, t := range tasks {
		sb.WriteString("  " + t.Name)
		if t.Description != "" {
			sb.WriteString(" - " + t.Description)
		}
		sb.WriteString(" (" + t.Source + ")\n")
	}
	return sb.String()
}

func formatExecutionList(executions []*task.Execution) string {
	if len(executions) == 0 {
		return "No running tasks"
	}

	var sb strings.Builder
	sb.WriteString("Task executions:\n")
	for _, exec := range executions {
		sb.WriteString("  " + exec.ID + " " + exec.Task.Name + " [" + string(exec.State()) + "]\n")
	}
	return sb.String()
}

func formatExecutionStatus(exec *task.Execution) string {
	msg := "Task: " + exec.Task.Name + "\n"
	msg += "State: " + string(exec.State()) + "\n"
	msg += "Duration: " + exec.Duration().String()
	if code := exec.ExitCode(); code >= 0 {
		msg += fmt.Sprintf("\nExit code: %d", code)
	}
	return msg
}
