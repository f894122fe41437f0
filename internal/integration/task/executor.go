package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrEmptyCommand is returned for tasks without a command.
var ErrEmptyCommand = errors.New("empty command")

// ExecutorConfig configures the task executor.
type ExecutorConfig struct {
	// Shell runs shell tasks.
	Shell string

	// ShellArgs precede the command line, e.g. ["-NoProfile", "-Command"].
	ShellArgs []string

	// Env are environment variables added to every task.
	Env map[string]string

	// OutputBufferSize is the longest accepted output line in bytes.
	OutputBufferSize int
}

// DefaultExecutorConfig runs shell tasks through PowerShell.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Shell:            "pwsh",
		ShellArgs:        []string{"-NoProfile", "-Command"},
		OutputBufferSize: 64 * 1024,
	}
}

// ExecutionState represents the state of a task execution.
type ExecutionState string

const (
	// ExecutionStatePending indicates the task is waiting to run.
	ExecutionStatePending ExecutionState = "pending"
	// ExecutionStateRunning indicates the task is running.
	ExecutionStateRunning ExecutionState = "running"
	// ExecutionStateSucceeded indicates the task exited with status 0.
	ExecutionStateSucceeded ExecutionState = "succeeded"
	// ExecutionStateFailed indicates the task failed to start or exited non-zero.
	ExecutionStateFailed ExecutionState = "failed"
	// ExecutionStateCanceled indicates the task was canceled.
	ExecutionStateCanceled ExecutionState = "canceled"
)

// Execution is a running or completed task execution.
type Execution struct {
	// ID identifies the execution.
	ID string

	// Task is the task being executed.
	Task *Task

	seq int64

	mu        sync.RWMutex
	state     ExecutionState
	startTime time.Time
	endTime   time.Time
	exitCode  int
	err       error

	cancel   context.CancelFunc
	output   *OutputProcessor
	done     chan struct{}
	doneOnce sync.Once
}

// ExecutionListener receives execution events.
type ExecutionListener interface {
	// OnExecutionStarted is called when the process starts.
	OnExecutionStarted(exec *Execution)

	// OnExecutionOutput is called for each output line.
	OnExecutionOutput(exec *Execution, line OutputLine)

	// OnExecutionCompleted is called once when execution ends.
	OnExecutionCompleted(exec *Execution)
}

// Executor runs tasks as child processes.
type Executor struct {
	config ExecutorConfig

	executions   map[string]*Execution
	executionsMu sync.RWMutex

	listeners   []ExecutionListener
	listenersMu sync.RWMutex

	idCounter atomic.Int64
}

// NewExecutor creates a task executor.
func NewExecutor(config ExecutorConfig) *Executor {
	if config.Shell == "" {
		def := DefaultExecutorConfig()
		config.Shell = def.Shell
		config.ShellArgs = def.ShellArgs
	}
	if config.OutputBufferSize <= 0 {
		config.OutputBufferSize = 64 * 1024
	}

	return &Executor{
		config:     config,
		executions: make(map[string]*Execution),
	}
}

// AddListener adds an execution listener.
func (e *Executor) AddListener(listener ExecutionListener) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.listeners = append(e.listeners, listener)
}

// Execute starts a task and returns its execution handle.
func (e *Executor) Execute(ctx context.Context, task *Task) (*Execution, error) {
	if task == nil || task.Command == "" {
		return nil, ErrEmptyCommand
	}

	execCtx, cancel := context.WithCancel(ctx)
	seq := e.idCounter.Add(1)
	exec := &Execution{
		ID:       fmt.Sprintf("exec-%d", seq),
		Task:     task,
		seq:      seq,
		state:    ExecutionStatePending,
		exitCode: -1,
		cancel:   cancel,
		output:   NewOutputProcessor(e.config.OutputBufferSize),
		done:     make(chan struct{}),
	}

	e.executionsMu.Lock()
	e.executions[exec.ID] = exec
	e.executionsMu.Unlock()

	go e.run(execCtx, exec)

	return exec, nil
}

// ExecuteSync runs a task and waits for it to finish.
func (e *Executor) ExecuteSync(ctx context.Context, task *Task) (*Execution, error) {
	exec, err := e.Execute(ctx, task)
	if err != nil {
		return nil, err
	}
	<-exec.Done()
	return exec, nil
}

// GetExecution returns an execution by ID.
func (e *Executor) GetExecution(id string) (*Execution, bool) {
	e.executionsMu.RLock()
	defer e.executionsMu.RUnlock()
	exec, ok := e.executions[id]
	return exec, ok
}

// ListExecutions returns all executions, oldest first.
func (e *Executor) ListExecutions() []*Execution {
	e.executionsMu.RLock()
	defer e.executionsMu.RUnlock()

	result := make([]*Execution, 0, len(e.executions))
	for _, exec := range e.executions {
		result = append(result, exec)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].seq < result[j].seq
	})
	return result
}

// CancelExecution cancels an execution by ID.
func (e *Executor) CancelExecution(id string) error {
	exec, ok := e.GetExecution(id)
	if !ok {
		return fmt.Errorf("execution not found: %s", id)
	}
	exec.Cancel()
	return nil
}

func (e *Executor) run(ctx context.Context, exec *Execution) {
	defer exec.cancel()

	cmd := e.buildCommand(ctx, exec.Task)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		e.finish(exec, ExecutionStateFailed, -1, fmt.Errorf("stdout pipe: %w", err))
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		e.finish(exec, ExecutionStateFailed, -1, fmt.Errorf("stderr pipe: %w", err))
		return
	}

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			e.finish(exec, ExecutionStateCanceled, -1, ctx.Err())
			return
		}
		e.finish(exec, ExecutionStateFailed, -1, fmt.Errorf("start: %w", err))
		return
	}

	exec.mu.Lock()
	exec.state = ExecutionStateRunning
	exec.startTime = time.Now()
	exec.mu.Unlock()
	e.notifyStarted(exec)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.processOutput(exec, stdout, OutputStreamStdout)
	}()
	go func() {
		defer wg.Done()
		e.processOutput(exec, stderr, OutputStreamStderr)
	}()
	wg.Wait()

	err = cmd.Wait()
	switch {
	case ctx.Err() != nil:
		e.finish(exec, ExecutionStateCanceled, -1, ctx.Err())
	case err != nil:
		code := -1
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		e.finish(exec, ExecutionStateFailed, code, err)
	default:
		e.finish(exec, ExecutionStateSucceeded, 0, nil)
	}
}

// buildCommand creates the process for a task.
func (e *Executor) buildCommand(ctx context.Context, task *Task) *osexec.Cmd {
	var cmd *osexec.Cmd
	switch task.Type {
	case TaskTypeProcess:
		cmd = osexec.CommandContext(ctx, task.Command, task.Args...)
	default:
		args := append(append([]string(nil), e.config.ShellArgs...), task.Command)
		cmd = osexec.CommandContext(ctx, e.config.Shell, args...)
	}

	cmd.Dir = task.Cwd
	cmd.Env = e.buildEnvironment(task)
	return cmd
}

// buildEnvironment merges os.Environ, the executor env and the task env,
// later entries winning.
func (e *Executor) buildEnvironment(task *Task) []string {
	envMap := make(map[string]string)
	for _, kv := range os.Environ() {
		if idx := strings.Index(kv, "="); idx > 0 {
			envMap[kv[:idx]] = kv[idx+1:]
		}
	}
	for k, v := range e.config.Env {
		envMap[k] = v
	}
	for k, v := range task.Env {
		envMap[k] = v
	}

	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+envMap[k])
	}
	return env
}

func (e *Executor) processOutput(exec *Execution, r io.Reader, stream OutputStream) {
	// A scan error (line too long) only truncates the captured output.
	// The rest of the pipe is discarded so the child never blocks on write.
	err := exec.output.Process(r, stream, func(line OutputLine) {
		e.notifyOutput(exec, line)
	})
	if err != nil {
		_, _ = io.Copy(io.Discard, r)
	}
}

func (e *Executor) finish(exec *Execution, state ExecutionState, code int, err error) {
	exec.mu.Lock()
	exec.state = state
	exec.exitCode = code
	exec.err = err
	exec.endTime = time.Now()
	exec.mu.Unlock()

	e.notifyCompleted(exec)
	exec.doneOnce.Do(func() { close(exec.done) })
}

func (e *Executor) snapshotListeners() []ExecutionListener {
	e.listenersMu.RLock()
	defer e.listenersMu.RUnlock()
	return append([]ExecutionListener(nil), e.listeners...)
}

func (e *Executor) notifyStarted(exec *Execution) {
	for _, l := range e.snapshotListeners() {
		l.OnExecutionStarted(exec)
	}
}

func (e *Executor) notifyOutput(exec *Execution, line OutputLine) {
	for _, l := range e.snapshotListeners() {
		l.OnExecutionOutput(exec, line)
	}
}

func (e *Executor) notifyCompleted(exec *Execution) {
	for _, l := range e.snapshotListeners() {
		l.OnExecutionCompleted(exec)
	}
}

// Cancel cancels the execution.
func (ex *Execution) Cancel() {
	ex.cancel()
}

// Done returns a channel that is closed when execution ends.
func (ex *Execution) Done() <-chan struct{} {
	return ex.done
}

// State returns the current execution state.
func (ex *Execution) State() ExecutionState {
	ex.mu.RLock()
	defer ex.mu.RUnlock()
	return ex.state
}

// ExitCode returns the process exit code, or -1 if unknown.
func (ex *Execution) ExitCode() int {
	ex.mu.RLock()
	defer ex.mu.RUnlock()
	return ex.exitCode
}

// Err returns the execution error, if any.
func (ex *Execution) Err() error {
	ex.mu.RLock()
	defer ex.mu.RUnlock()
	return ex.err
}

// Duration returns how long the execution ran.
func (ex *Execution) Duration() time.Duration {
	ex.mu.RLock()
	defer ex.mu.RUnlock()

	if ex.startTime.IsZero() {
		return 0
	}
	end := ex.endTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(ex.startTime)
}

// Output returns the captured output lines.
func (ex *Execution) Output() []OutputLine {
	return ex.output.Lines()
}
