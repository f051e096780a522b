package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/modules"
	"github.com/vvsotnikov/playwright/internal/ui"
)

// CheckCommand handles the check command
type CheckCommand struct {
	session *session
}

// NewCheckCommand creates a new CheckCommand
func NewCheckCommand(s *session) *CheckCommand {
	return &CheckCommand{session: s}
}

// Execute runs the command
func (cc *CheckCommand) Execute(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	cfg := cc.session.cfg
	formatter := ui.NewFormatter(cmd.OutOrStdout(), cfg.RootDir)

	root, errs, err := cc.session.assemble(ctx, args, nil)
	if err != nil {
		return err
	}
	errs = append(errs, cc.checkModules(ctx)...)

	tests := len(root.AllTests())
	if len(errs) == 0 {
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %d test(s) in %d project(s), no errors\n", tests, len(root.Suites()))
	}
	formatter.PrintErrors(errs)
	return outcome(tests, len(errs), cfg.Flags.PassWithNoTests)
}

// checkModules resolves the global hooks and reporter modules
func (cc *CheckCommand) checkModules(ctx context.Context) []domain.TestError {
	cfg := cc.session.cfg
	var errs []domain.TestError
	for _, file := range []string{cfg.GlobalSetup, cfg.GlobalTeardown} {
		if file == "" {
			continue
		}
		if _, err := modules.LoadGlobalHook(ctx, cfg, file); err != nil {
			errs = append(errs, moduleError(file, err))
		}
	}
	for _, name := range cfg.Reporters {
		if !modules.IsModulePath(name) {
			continue
		}
		if _, err := modules.LoadReporter(ctx, cfg, name); err != nil {
			errs = append(errs, moduleError(name, err))
		}
	}
	cc.session.logger.Debug("modules checked", zap.Int("errors", len(errs)))
	return errs
}

func moduleError(file string, err error) domain.TestError {
	return domain.TestError{
		Message:  fmt.Sprintf("cannot load module: %v", err),
		Location: &domain.Location{File: file},
	}
}
