package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vvsotnikov/playwright/internal/storage"
	"github.com/vvsotnikov/playwright/internal/ui"
)

// ShowCommand handles the show command
type ShowCommand struct {
	session *session
}

// NewShowCommand creates a new ShowCommand
func NewShowCommand(s *session) *ShowCommand {
	return &ShowCommand{session: s}
}

// Execute runs the command
func (sc *ShowCommand) Execute(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg := sc.session.cfg
	viewer := ui.NewSuiteViewer(cfg.RootDir)

	last, _ := cmd.Flags().GetBool("last")
	if last {
		output, err := storage.NewJSONStorage(cfg).Load()
		if err != nil {
			return err
		}
		return viewer.View(storage.RestoreRoot(output, cfg.RootDir), output.Errors)
	}

	root, errs, err := sc.session.assemble(cmd.Context(), args, os.Stderr)
	if err != nil {
		return err
	}
	return viewer.View(root, errs)
}
