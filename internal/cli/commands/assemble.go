package commands

import (
	"context"
	"io"

	"github.com/vvsotnikov/playwright/internal/discovery"
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/loader"
	"github.com/vvsotnikov/playwright/internal/match"
	"github.com/vvsotnikov/playwright/internal/pipeline"
	"github.com/vvsotnikov/playwright/internal/suite"
	"github.com/vvsotnikov/playwright/internal/ui"
)

// assemble runs the pipeline for the current configuration. Positional
// arguments are file[:line[:column]] filters.
func (s *session) assemble(ctx context.Context, args []string, progress io.Writer) (*suite.Suite, []domain.TestError, error) {
	filters, err := match.ParseLocationArgs(args)
	if err != nil {
		return nil, nil, err
	}
	titles, err := buildTitleMatcher(s.cfg.Flags.Grep, s.cfg.Flags.GrepInvert)
	if err != nil {
		return nil, nil, err
	}

	scanner := discovery.NewScanner(s.cfg.PathsToIgnore, s.logger)
	p := pipeline.New(s.cfg, scanner, func() (loader.Host, error) {
		return loader.New(s.cfg, s.logger)
	}, s.logger)
	if progress != nil {
		p.SetProgress(ui.NewProgressBar(progress))
	}

	sink := domain.NewErrorSink()
	root, err := p.LoadAllTests(ctx, pipeline.Options{
		ListOnly:         s.cfg.Flags.ListOnly,
		TestFileFilters:  filters,
		TestTitleMatcher: titles,
		ProjectFilter:    s.cfg.Flags.Projects,
		PassWithNoTests:  s.cfg.Flags.PassWithNoTests,
	}, sink)
	if err != nil {
		return nil, nil, err
	}
	return root, sink.Errors(), nil
}

// buildTitleMatcher combines --grep and --grep-invert. It returns nil when
// neither is set.
func buildTitleMatcher(grep, grepInvert string) (match.TitleMatcher, error) {
	if grep == "" && grepInvert == "" {
		return nil, nil
	}
	include, err := match.NewTitleMatcher(grep)
	if err != nil {
		return nil, err
	}
	if grepInvert == "" {
		return include, nil
	}
	exclude, err := match.NewTitleMatcher(grepInvert)
	if err != nil {
		return nil, err
	}
	return match.And(include, match.Not(exclude)), nil
}
