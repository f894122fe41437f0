package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/dokd/internal/app"
	"github.com/dshills/dokd/internal/logging"
)

// cli holds the persistent flags shared by all commands.
type cli struct {
	configPath string
	logLevel   string
	folders    []string

	// newApp builds the application; tests replace it.
	newApp func(opts app.Options) (*app.Application, error)
}

func newRootCmd() *cobra.Command {
	c := &cli{newApp: app.New}
	return c.rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dokd",
		Short: "dokd - DOK Dsc workspace commands and tasks",
		Long: `dokd sends DOK Dsc commands to a shared PowerShell terminal and lists the
build and publish tasks of the collections declared in .dokd/settings.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logLevel != "" && !logging.ValidLevel(c.logLevel) {
				return fmt.Errorf("invalid log level %q (use debug, info, warn, error)", c.logLevel)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "path to configuration file")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringArrayVarP(&c.folders, "folder", "f", nil, "workspace folder path or URI (repeatable, default: current directory)")

	root.AddCommand(
		c.terminalCmd("init", "Initialize the DOK Dsc workspace", commandInitWorkspace),
		c.terminalCmd("restore", "Restore the workspace PowerShell modules", commandRestoreModules),
		c.terminalCmd("build-all", "Build every collection", commandBuildAll),
		c.newCollectionCmd(),
		c.tasksCmd(),
		c.runCmd(),
		versionCmd(),
	)
	return root
}

// open creates the application for a command.
func (c *cli) open(cmd *cobra.Command) (*app.Application, error) {
	folders := c.folders
	if len(folders) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		folders = []string{cwd}
	}

	return c.newApp(app.Options{
		ConfigPath: c.configPath,
		Folders:    folders,
		LogLevel:   c.logLevel,
		LogOutput:  cmd.ErrOrStderr(),
		Stdin:      os.Stdin,
		Stdout:     cmd.OutOrStdout(),
	})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dokd %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}
