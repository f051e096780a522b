package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvsotnikov/playwright/internal/modules"
	"github.com/vvsotnikov/playwright/internal/reporter"
)

// ListCommand handles the list command
type ListCommand struct {
	session *session
}

// NewListCommand creates a new ListCommand
func NewListCommand(s *session) *ListCommand {
	return &ListCommand{session: s}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	r, err := lc.session.reporters(ctx, out)
	if err != nil {
		return err
	}

	root, errs, err := lc.session.assemble(ctx, args, os.Stderr)
	if err != nil {
		return err
	}
	if err := reporter.Report(r, root, errs); err != nil {
		return err
	}
	return outcome(len(root.AllTests()), len(errs), lc.session.cfg.Flags.PassWithNoTests)
}

// reporters builds the configured reporters
func (s *session) reporters(ctx context.Context, out io.Writer) (reporter.Reporter, error) {
	var multi reporter.Multi
	for _, name := range s.cfg.Reporters {
		if r, ok := reporter.Builtin(name, s.cfg, out); ok {
			multi = append(multi, r)
			continue
		}
		if !modules.IsModulePath(name) {
			return nil, fmt.Errorf("unknown reporter %q", name)
		}
		r, err := modules.LoadReporter(ctx, s.cfg, name)
		if err != nil {
			return nil, err
		}
		multi = append(multi, r)
	}
	return multi, nil
}

var errNoTests = errors.New("no tests found")

// outcome turns the assembly result into the command's exit status
func outcome(tests, errs int, passWithNoTests bool) error {
	switch {
	case errs > 0:
		return fmt.Errorf("%d error(s) found while loading tests", errs)
	case tests == 0 && !passWithNoTests:
		return errNoTests
	}
	return nil
}
