// Package pipeline assembles the root suite of a run: it selects projects,
// resolves and shards their files, loads every file once, composes project
// suites and validates the result.
package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/discovery"
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/loader"
	"github.com/vvsotnikov/playwright/internal/match"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// HostFactory starts the loader used for one run
type HostFactory func() (loader.Host, error)

// Options select what a run assembles
type Options struct {
	// ListOnly reports that tests are enumerated, not executed. Assembly is
	// the same either way.
	ListOnly         bool
	TestFileFilters  match.FileFilters
	TestTitleMatcher match.TitleMatcher
	ProjectFilter    []string
	// PassWithNoTests is advisory; callers decide what an empty root means.
	PassWithNoTests bool
}

// Pipeline assembles root suites for a configuration
type Pipeline struct {
	cfg      *config.Config
	lister   discovery.FileLister
	newHost  HostFactory
	logger   *zap.Logger
	progress Progress
}

// New creates a new Pipeline
func New(cfg *config.Config, lister discovery.FileLister, newHost HostFactory, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:     cfg,
		lister:  lister,
		newHost: newHost,
		logger:  logger,
	}
}

// SetProgress sets the progress reporter used while loading files
func (p *Pipeline) SetProgress(progress Progress) {
	p.progress = progress
}

// LoadAllTests assembles the root suite. Recoverable problems such as load
// failures, duplicate titles and forbidden focused items are added to sink;
// the returned error is reserved for failures that stop the run.
func (p *Pipeline) LoadAllTests(ctx context.Context, opts Options, sink *domain.ErrorSink) (*suite.Suite, error) {
	selected, unknown := discovery.FilterProjects(p.cfg.Projects, opts.ProjectFilter)
	if len(unknown) > 0 {
		p.logger.Warn("unknown projects in filter", zap.String("projects", strings.Join(unknown, ", ")))
	}

	set, err := p.resolveFiles(ctx, selected, opts.TestFileFilters)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("files resolved",
		zap.Int("top_level_projects", len(set.topLevel)),
		zap.Int("dependency_projects", len(set.dependencies)))

	files := set.uniqueFiles()
	fileSuites, err := p.loadFiles(ctx, files, sink)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if fileSuite, ok := fileSuites[file]; ok {
			sink.Add(duplicateTitleErrors(p.cfg.RootDir, fileSuite)...)
		}
	}
	sink.Add(importErrors(p.cfg.RootDir, fileSuites, files)...)

	root := suite.NewRoot()
	filters := Filters{Files: opts.TestFileFilters, TitleMatcher: opts.TestTitleMatcher}
	for _, pf := range set.topLevel {
		projectSuite, err := ComposeProjectSuite(fileSuites, pf.project, filters, pf.files)
		if err != nil {
			return nil, err
		}
		if projectSuite != nil {
			root.AddSuite(projectSuite)
		}
	}

	if p.cfg.ForbidOnly {
		sink.Add(forbidOnlyErrors(root)...)
	}
	suite.FilterOnly(root)

	// Each dependency is prepended in closure order, so a project always
	// comes after the projects it depends on.
	for _, pf := range set.dependencies {
		projectSuite, err := ComposeProjectSuite(fileSuites, pf.project, Filters{}, pf.files)
		if err != nil {
			return nil, err
		}
		if projectSuite != nil {
			root.PrependSuite(projectSuite)
		}
	}

	p.logger.Debug("root suite assembled",
		zap.Int("projects", len(root.Suites())),
		zap.Int("tests", len(root.AllTests())),
		zap.Int("errors", sink.Len()))
	return root, nil
}
