//go:build !windows

package task

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockExecutionListener records execution events.
type MockExecutionListener struct {
	mu        sync.Mutex
	started   []*Execution
	output    []OutputLine
	completed []*Execution
}

func (l *MockExecutionListener) OnExecutionStarted(exec *Execution) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, exec)
}

func (l *MockExecutionListener) OnExecutionOutput(exec *Execution, line OutputLine) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = append(l.output, line)
}

func (l *MockExecutionListener) OnExecutionCompleted(exec *Execution) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed = append(l.completed, exec)
}

func shExecutor() *Executor {
	return NewExecutor(ExecutorConfig{Shell: "/bin/sh", ShellArgs: []string{"-c"}})
}

func waitDone(t *testing.T, exec *Execution) {
	t.Helper()
	select {
	case <-exec.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("execution timed out")
	}
}

func TestDefaultExecutorConfig(t *testing.T) {
	cfg := DefaultExecutorConfig()

	assert.Equal(t, "pwsh", cfg.Shell)
	assert.Equal(t, []string{"-NoProfile", "-Command"}, cfg.ShellArgs)
	assert.Equal(t, 64*1024, cfg.OutputBufferSize)
}

func TestNewExecutor_Defaults(t *testing.T) {
	e := NewExecutor(ExecutorConfig{})

	assert.Equal(t, "pwsh", e.config.Shell)
	assert.Equal(t, 64*1024, e.config.OutputBufferSize)
}

func TestExecutor_ExecuteEmptyCommand(t *testing.T) {
	e := shExecutor()

	_, err := e.Execute(context.Background(), &Task{Name: "empty"})
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = e.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestExecutor_Execute(t *testing.T) {
	e := shExecutor()
	listener := &MockExecutionListener{}
	e.AddListener(listener)

	task := &Task{Name: "echo", Type: TaskTypeShell, Command: "echo hello; echo oops 1>&2"}

	exec, err := e.Execute(context.Background(), task)
	require.NoError(t, err)
	require.NotNil(t, exec)
	assert.NotEmpty(t, exec.ID)
	assert.Same(t, task, exec.Task)

	waitDone(t, exec)

	assert.Equal(t, ExecutionStateSucceeded, exec.State())
	assert.Equal(t, 0, exec.ExitCode())
	assert.NoError(t, exec.Err())

	var stdout, stderr []string
	for _, line := range exec.Output() {
		switch line.Stream {
		case OutputStreamStdout:
			stdout = append(stdout, line.Content)
		case OutputStreamStderr:
			stderr = append(stderr, line.Content)
		}
	}
	assert.Equal(t, []string{"hello"}, stdout)
	assert.Equal(t, []string{"oops"}, stderr)

	listener.mu.Lock()
	defer listener.mu.Unlock()
	assert.Len(t, listener.started, 1)
	assert.Len(t, listener.output, 2)
	assert.Len(t, listener.completed, 1)
}

func TestExecutor_ExecuteFailing(t *testing.T) {
	e := shExecutor()

	exec, err := e.ExecuteSync(context.Background(), &Task{Name: "fail", Command: "exit 3"})
	require.NoError(t, err)

	assert.Equal(t, ExecutionStateFailed, exec.State())
	assert.Equal(t, 3, exec.ExitCode())
	assert.Error(t, exec.Err())
}

func TestExecutor_LineTooLongDoesNotBlock(t *testing.T) {
	e := NewExecutor(ExecutorConfig{
		Shell:            "/bin/sh",
		ShellArgs:        []string{"-c"},
		OutputBufferSize: 1024,
	})

	exec, err := e.Execute(context.Background(), &Task{
		Name:    "long line",
		Command: `echo first; head -c 200000 /dev/zero | tr '\0' x; echo; echo done`,
	})
	require.NoError(t, err)

	waitDone(t, exec)

	assert.Equal(t, ExecutionStateSucceeded, exec.State())
	assert.Equal(t, 0, exec.ExitCode())

	lines := exec.Output()
	require.NotEmpty(t, lines)
	assert.Equal(t, "first", lines[0].Content)
}

func TestExecutor_ExecuteProcess(t *testing.T) {
	e := shExecutor()

	exec, err := e.ExecuteSync(context.Background(), &Task{
		Name:    "process",
		Type:    TaskTypeProcess,
		Command: "/bin/sh",
		Args:    []string{"-c", "echo direct"},
	})
	require.NoError(t, err)

	assert.Equal(t, ExecutionStateSucceeded, exec.State())
	require.Len(t, exec.Output(), 1)
	assert.Equal(t, "direct", exec.Output()[0].Content)
}

func TestExecutor_StartFailure(t *testing.T) {
	e := NewExecutor(ExecutorConfig{Shell: "/nonexistent/shell", ShellArgs: []string{"-c"}})

	exec, err := e.ExecuteSync(context.Background(), &Task{Name: "bad", Command: "true"})
	require.NoError(t, err)

	assert.Equal(t, ExecutionStateFailed, exec.State())
	assert.Equal(t, -1, exec.ExitCode())
	assert.Error(t, exec.Err())
	assert.Zero(t, exec.Duration())
}

func TestExecutor_Environment(t *testing.T) {
	e := NewExecutor(ExecutorConfig{
		Shell:     "/bin/sh",
		ShellArgs: []string{"-c"},
		Env:       map[string]string{"DOKD_A": "executor", "DOKD_B": "executor"},
	})

	exec, err := e.ExecuteSync(context.Background(), &Task{
		Name:    "env",
		Command: `echo "$DOKD_A $DOKD_B"`,
		Env:     map[string]string{"DOKD_B": "task"},
	})
	require.NoError(t, err)
	require.Len(t, exec.Output(), 1)
	assert.Equal(t, "executor task", exec.Output()[0].Content)
}

func TestExecutor_WorkingDirectory(t *testing.T) {
	e := shExecutor()
	dir := t.TempDir()

	exec, err := e.ExecuteSync(context.Background(), &Task{Name: "pwd", Command: "pwd -P", Cwd: dir})
	require.NoError(t, err)
	require.Len(t, exec.Output(), 1)
	assert.True(t, strings.HasSuffix(exec.Output()[0].Content, dir[strings.LastIndex(dir, "/"):]))
}

func TestExecutor_GetAndCancelExecution(t *testing.T) {
	e := shExecutor()

	exec, err := e.Execute(context.Background(), &Task{Name: "sleep", Command: "exec sleep 10"})
	require.NoError(t, err)

	got, ok := e.GetExecution(exec.ID)
	require.True(t, ok)
	assert.Same(t, exec, got)

	require.NoError(t, e.CancelExecution(exec.ID))
	waitDone(t, exec)

	assert.Equal(t, ExecutionStateCanceled, exec.State())
	assert.ErrorIs(t, exec.Err(), context.Canceled)

	assert.Error(t, e.CancelExecution("exec-missing"))
}

func TestExecutor_ContextCancellation(t *testing.T) {
	e := shExecutor()
	ctx, cancel := context.WithCancel(context.Background())

	exec, err := e.Execute(ctx, &Task{Name: "sleep", Command: "exec sleep 10"})
	require.NoError(t, err)

	cancel()
	waitDone(t, exec)

	assert.Equal(t, ExecutionStateCanceled, exec.State())
}

func TestExecution_Duration(t *testing.T) {
	e := shExecutor()

	exec, err := e.ExecuteSync(context.Background(), &Task{Name: "sleep", Command: "sleep 0.05"})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, exec.Duration(), 40*time.Millisecond)
}
