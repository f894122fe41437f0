package dokd

import (
	"context"

	"github.com/dshills/dokd/internal/integration/task"
)

// TaskProvider contributes the collection tasks of the open workspace.
type TaskProvider struct {
	workspace Workspace
	discovery *task.Discovery
}

// NewTaskProvider creates a task provider backed by discovery.
func NewTaskProvider(ws Workspace, discovery *task.Discovery) *TaskProvider {
	return &TaskProvider{workspace: ws, discovery: discovery}
}

// ProvideTasks reads every folder's settings afresh and returns the
// collection tasks in folder order. Unreadable folders contribute nothing.
func (p *TaskProvider) ProvideTasks(ctx context.Context) ([]*task.Task, error) {
	if p.workspace == nil || !p.workspace.IsOpen() {
		return []*task.Task{}, nil
	}
	return p.discovery.Discover(ctx, p.workspace.Folders())
}

// ResolveTask never fills in tasks; the host keeps them as they are.
func (p *TaskProvider) ResolveTask(ctx context.Context, t *task.Task) *task.Task {
	return nil
}

// FindTask returns the provided task with the given label.
func (p *TaskProvider) FindTask(ctx context.Context, label string) (*task.Task, bool, error) {
	tasks, err := p.ProvideTasks(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, t := range tasks {
		if t.Name == label {
			return t, true, nil
		}
	}
	return nil, false, nil
}
