package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/discovery"
	"github.com/vvsotnikov/playwright/internal/match"
)

// projectFiles pairs a project with the files it will load, in listing order
type projectFiles struct {
	project *config.Project
	files   []string
}

// fileSet is the outcome of file-set resolution
type fileSet struct {
	topLevel     []projectFiles
	dependencies []projectFiles
}

// resolveFiles decides which projects are top-level and which are loaded
// as dependencies, and which files each of them needs
func (p *Pipeline) resolveFiles(ctx context.Context, selected []*config.Project, filters match.FileFilters) (*fileSet, error) {
	closure, err := projectClosure(selected)
	if err != nil {
		return nil, err
	}

	baseline, err := p.listFiles(ctx, closure)
	if err != nil {
		return nil, err
	}

	var matched []projectFiles
	for i, project := range closure {
		var files []string
		for _, f := range baseline[i] {
			if filters.MatchFile(f) {
				files = append(files, f)
			}
		}
		if len(files) > 0 {
			matched = append(matched, projectFiles{project: project, files: files})
		}
	}

	// Only projects with matching files pull their dependencies out of the
	// top level.
	matchedProjects := make([]*config.Project, 0, len(matched))
	for _, pf := range matched {
		matchedProjects = append(matchedProjects, pf.project)
	}
	dependencies := dependencyProjects(matchedProjects)
	var filtered []projectFiles
	for _, pf := range matched {
		if !dependencies[pf.project] {
			filtered = append(filtered, pf)
		}
	}

	if p.cfg.Shard != nil {
		filtered = shardFiles(filtered, p.cfg.Shard)
		p.logger.Debug("shard applied", zap.String("shard", p.cfg.Shard.String()), zap.Int("projects", len(filtered)))
	}

	set := &fileSet{topLevel: filtered}
	topLevel := make(map[*config.Project]bool, len(filtered))
	roots := make([]*config.Project, 0, len(filtered))
	for _, pf := range filtered {
		topLevel[pf.project] = true
		roots = append(roots, pf.project)
	}

	needed, err := projectClosure(roots)
	if err != nil {
		return nil, err
	}
	baselineOf := make(map[*config.Project][]string, len(closure))
	for i, project := range closure {
		baselineOf[project] = baseline[i]
	}
	for _, project := range needed {
		if topLevel[project] {
			continue
		}
		set.dependencies = append(set.dependencies, projectFiles{project: project, files: baselineOf[project]})
	}
	return set, nil
}

// listFiles lists the files of every project concurrently. Results are
// indexed like projects.
func (p *Pipeline) listFiles(ctx context.Context, projects []*config.Project) ([][]string, error) {
	cache := discovery.NewFSCache()
	results := make([][]string, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	for i, project := range projects {
		g.Go(func() error {
			files, err := p.lister.ListFiles(ctx, project, cache)
			if err != nil {
				return fmt.Errorf("list files of project %q: %w", project.Name, err)
			}
			results[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
