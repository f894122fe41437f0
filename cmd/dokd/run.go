package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/dokd/internal/integration/task"
)

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <label>",
		Short: "Run a collection task by label",
		Long: `Run a collection task through the task shell, streaming its output.

Examples:
  dokd run "Build collection Web"
  dokd run "Publish collection Web"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			t, ok, err := application.Tasks().FindTask(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("task %q not found", args[0])
			}

			application.Executor().AddListener(&streamer{
				task:   t,
				stdout: cmd.OutOrStdout(),
				stderr: cmd.ErrOrStderr(),
			})

			exec, err := application.Executor().ExecuteSync(ctx, t)
			if err != nil {
				return err
			}

			switch exec.State() {
			case task.ExecutionStateSucceeded:
				return nil
			case task.ExecutionStateCanceled:
				return fmt.Errorf("task %q canceled", t.Name)
			default:
				if code := exec.ExitCode(); code >= 0 {
					return fmt.Errorf("task %q failed with exit code %d", t.Name, code)
				}
				return fmt.Errorf("task %q failed: %w", t.Name, exec.Err())
			}
		},
	}
}

// streamer copies one task's output to the command's streams.
type streamer struct {
	task   *task.Task
	stdout io.Writer
	stderr io.Writer
}

func (s *streamer) OnExecutionStarted(exec *task.Execution) {}

func (s *streamer) OnExecutionOutput(exec *task.Execution, line task.OutputLine) {
	if exec.Task != s.task {
		return
	}
	w := s.stdout
	if line.Stream == task.OutputStreamStderr {
		w = s.stderr
	}
	fmt.Fprintln(w, line.Content)
}

func (s *streamer) OnExecutionCompleted(exec *task.Execution) {}
