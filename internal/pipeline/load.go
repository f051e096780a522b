package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/loader"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// Progress receives loading progress
type Progress interface {
	Start(total int)
	Advance(file string)
	Finish()
}

// uniqueFiles returns every file of the file set once, in first-seen order
func (fs *fileSet) uniqueFiles() []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]projectFiles{fs.topLevel, fs.dependencies} {
		for _, pf := range group {
			for _, f := range pf.files {
				if !seen[f] {
					seen[f] = true
					out = append(out, f)
				}
			}
		}
	}
	return out
}

// loadFiles loads every file exactly once and stops the host before
// returning. Recoverable load errors are recorded in the sink in file order.
func (p *Pipeline) loadFiles(ctx context.Context, files []string, sink *domain.ErrorSink) (loaded map[string]*suite.Suite, err error) {
	host, err := p.newHost()
	if err != nil {
		return nil, fmt.Errorf("start loader: %w", err)
	}
	defer func() {
		if stopErr := host.Stop(); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("stop loader: %w", stopErr))
			loaded = nil
		}
	}()

	if p.progress != nil {
		p.progress.Start(len(files))
		defer p.progress.Finish()
	}

	suites := make([]*suite.Suite, len(files))
	loadErrs := make([]*loader.LoadError, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Workers, 1))
	for i, file := range files {
		g.Go(func() error {
			fileSuite, err := host.LoadTestFile(gctx, file)
			var loadErr *loader.LoadError
			switch {
			case errors.As(err, &loadErr):
				loadErrs[i] = loadErr
			case err != nil:
				return fmt.Errorf("load %s: %w", file, err)
			}
			suites[i] = fileSuite
			if p.progress != nil {
				p.progress.Advance(file)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded = make(map[string]*suite.Suite, len(files))
	for i, file := range files {
		if loadErrs[i] != nil {
			p.logger.Debug("file failed to load", zap.String("file", file), zap.Error(loadErrs[i]))
			sink.Add(loadErrs[i].TestError)
		}
		if suites[i] != nil {
			loaded[file] = suites[i]
		}
	}
	p.logger.Debug("files loaded", zap.Int("files", len(files)), zap.Int("suites", len(loaded)))
	return loaded, nil
}
