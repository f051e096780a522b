package commands

import (
	"go.uber.org/zap"

	"github.com/vvsotnikov/playwright/internal/cli"
	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/loader"
	"github.com/vvsotnikov/playwright/internal/logging"

	"github.com/spf13/cobra"
)

// session carries what is only known once flags are parsed
type session struct {
	cfg    *config.Config
	logger *zap.Logger
}

// Commands holds all CLI commands
type Commands struct {
	session *session
	List    *ListCommand
	Check   *CheckCommand
	Show    *ShowCommand
	Worker  *WorkerCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	s := &session{cfg: cfg, logger: zap.NewNop()}
	return &Commands{
		session: s,
		List:    NewListCommand(s),
		Check:   NewCheckCommand(s),
		Show:    NewShowCommand(s),
		Worker:  NewWorkerCommand(),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Configuration file (default: pwt.yaml in the current directory)")
	rootCmd.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(flags.Verbose)
		if err != nil {
			return err
		}
		c.session.logger = logger
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = c.session.logger.Sync()
	}

	// Update config with flags after parsing
	loadConfig := func(listOnly bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cmdFlags := flags.ToConfigFlags()
			cmdFlags.ListOnly = listOnly
			loaded, err := config.Load(cmdFlags)
			if err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		}
	}

	// List command
	listCmd := &cobra.Command{
		Use:     "list [file[:line[:column]]...]",
		Short:   "List the assembled test suite",
		Long:    "Discover, load and filter test files of every selected project and report the assembled suite without running it",
		RunE:    c.List.Execute,
		PreRunE: loadConfig(true),
	}
	addSelectionFlags(listCmd, flags)
	listCmd.Flags().StringSliceVar(&flags.Reporters, "reporter", nil, "Reporters to use: list, json or a module file (repeatable)")
	listCmd.Flags().StringVar(&flags.Output, "output", "", "Path of the json reporter output file")
	rootCmd.AddCommand(listCmd)

	// Check command
	checkCmd := &cobra.Command{
		Use:     "check [file[:line[:column]]...]",
		Short:   "Validate test files and configuration",
		Long:    "Assemble the suite, resolve global hooks and reporter modules, and fail when any error is found",
		RunE:    c.Check.Execute,
		PreRunE: loadConfig(false),
	}
	addSelectionFlags(checkCmd, flags)
	rootCmd.AddCommand(checkCmd)

	// Show command
	showCmd := &cobra.Command{
		Use:     "show [file[:line[:column]]...]",
		Short:   "Browse the assembled suite interactively",
		Long:    "Display the assembled suite, or the last stored listing with --last, in an interactive viewer",
		RunE:    c.Show.Execute,
		PreRunE: loadConfig(true),
	}
	addSelectionFlags(showCmd, flags)
	showCmd.Flags().BoolVar(&flags.Last, "last", false, "Show the listing stored by the last json report")
	showCmd.Flags().StringVar(&flags.Output, "output", "", "Path of the stored listing")
	rootCmd.AddCommand(showCmd)

	// Loader worker command, started by the process loader
	workerCmd := &cobra.Command{
		Use:    loader.WorkerCommand,
		Short:  "Serve test file load requests on stdin",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Worker.Execute(cmd.Context(), flags.RootDir, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	workerCmd.Flags().StringVar(&flags.RootDir, "root-dir", "", "Directory file suite titles are relative to")
	rootCmd.AddCommand(workerCmd)
}

func addSelectionFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringSliceVar(&flags.Projects, "project", nil, "Only use the named projects (repeatable, case-insensitive)")
	cmd.Flags().StringVarP(&flags.Grep, "grep", "g", "", "Only include tests whose title matches this pattern")
	cmd.Flags().StringVar(&flags.GrepInvert, "grep-invert", "", "Exclude tests whose title matches this pattern")
	cmd.Flags().StringVar(&flags.Shard, "shard", "", "Shard tests and select one shard, e.g. 1/3")
	cmd.Flags().BoolVar(&flags.ForbidOnly, "forbid-only", false, "Report focused tests (test.only) as errors")
	cmd.Flags().IntVar(&flags.RepeatEach, "repeat-each", 0, "Repeat each test N times")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "j", 0, "Number of concurrent loaders")
	cmd.Flags().StringVar(&flags.Loader, "loader", "", "How test files are loaded: in-process or process")
	cmd.Flags().BoolVar(&flags.PassWithNoTests, "pass-with-no-tests", false, "Do not fail when no tests are found")
}
