package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/dokd/internal/integration/task"
	"github.com/dshills/dokd/internal/workspace"
)

// Output formats of the tasks command.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func (c *cli) tasksCmd() *cobra.Command {
	var (
		output string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the collection tasks of the workspace",
		Long: `List the build, full build and publish tasks of every collection declared in
the workspace folders' .dokd/settings.json.

Examples:
  dokd tasks                          # Tasks of the current directory
  dokd tasks -f ./web -f ./db         # Tasks of two folders
  dokd tasks --output json            # Output JSON for piping
  dokd tasks --watch                  # Re-list when settings change`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("invalid output format %q (use text, json, yaml)", output)
			}

			application, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			list := func() error {
				tasks, err := application.Tasks().ProvideTasks(ctx)
				if err != nil {
					return err
				}
				return writeTasks(cmd.OutOrStdout(), output, tasks)
			}

			if err := list(); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchSettings(ctx, application.Workspace().Folders(), list)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-list tasks when a settings file changes")
	return cmd
}

// watchSettings calls list after every settings change until ctx is done.
func watchSettings(ctx context.Context, folders []workspace.Folder, list func() error) error {
	watcher, err := workspace.NewSettingsWatcher(folders)
	if err != nil {
		return err
	}
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-watcher.Changes():
			if !ok {
				return nil
			}
			if err := list(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			return err
		}
	}
}

func writeTasks(w io.Writer, format string, tasks []*task.Task) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tGROUP\tCOMMAND")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Group, t.Command)
	}
	return tw.Flush()
}
