package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/dokd/internal/app"
	"github.com/dshills/dokd/internal/dispatcher/handler"
	"github.com/dshills/dokd/internal/dokd"
)

const (
	commandInitWorkspace  = dokd.CommandInitWorkspace
	commandRestoreModules = dokd.CommandRestoreModules
	commandBuildAll       = dokd.CommandBuildAll
)

// terminalCmd sends one DOK Dsc command and attaches to the terminal.
func (c *cli) terminalCmd(use, short, action string) *cobra.Command {
	var detach bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTerminalAction(cmd, action, nil, detach)
		},
	}
	cmd.Flags().BoolVar(&detach, "detach", false, "exit after sending the command")
	return cmd
}

func (c *cli) newCollectionCmd() *cobra.Command {
	var (
		name   string
		detach bool
	)
	cmd := &cobra.Command{
		Use:   "new-collection",
		Short: "Create a collection",
		Long: `Create a collection. Without --name the collection name is asked for in an
input box; dismissing it (Esc, Ctrl-C or end of input) creates nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var actionArgs handler.Args
			if cmd.Flags().Changed("name") {
				actionArgs = handler.Args{"name": name}
			}
			return c.runTerminalAction(cmd, dokd.CommandNewCollection, actionArgs, detach)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "collection name")
	cmd.Flags().BoolVar(&detach, "detach", false, "exit after sending the command")
	return cmd
}

func (c *cli) runTerminalAction(cmd *cobra.Command, action string, args handler.Args, detach bool) error {
	application, err := c.open(cmd)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := application.Dispatch(ctx, action, args)
	switch result.Status {
	case handler.StatusError:
		return result.Error
	case handler.StatusNoOp:
		fmt.Fprintln(cmd.ErrOrStderr(), "No workspace folder is open.")
		return nil
	case handler.StatusCancelled:
		return nil
	}

	if detach {
		return nil
	}
	return attach(ctx, application, os.Stdin)
}

// attach forwards input to the shared terminal until its shell exits.
// Without a terminal on stdin, input is forwarded until end of input and
// the shell is then asked to exit once the queued commands finish.
func attach(ctx context.Context, application *app.Application, in *os.File) error {
	sess := application.Terminal().Current()
	if sess == nil {
		return nil
	}
	w, ok := sess.(io.Writer)
	if !ok {
		return nil
	}

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, state) }()

		go func() { _, _ = io.Copy(w, in) }()

		select {
		case <-sess.Done():
		case <-ctx.Done():
		}
		return nil
	}

	copied := make(chan error, 1)
	go func() {
		_, err := io.Copy(w, in)
		copied <- err
	}()

	select {
	case <-sess.Done():
		return nil
	case <-ctx.Done():
		return nil
	case err := <-copied:
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}

	if err := sess.SendText("exit", true); err != nil {
		return err
	}
	select {
	case <-sess.Done():
	case <-ctx.Done():
	}
	return nil
}
