// Package loader turns test files into file suites.
//
// A Host loads one file at a time and is safe for concurrent use. Files are
// parsed either inside the current process or by a pool of isolated worker
// processes, selected by the configured loader mode.
package loader

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/parser"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// Host loads test files into file suites
type Host interface {
	// LoadTestFile returns the file suite for file. A *LoadError is
	// recoverable and may come with a partial suite; any other error is fatal.
	LoadTestFile(ctx context.Context, file string) (*suite.Suite, error)
	// Stop releases the host. It is safe to call more than once.
	Stop() error
}

// LoadError is a recoverable failure to load a single test file
type LoadError struct {
	TestError domain.TestError
	Cause     error
}

func (e *LoadError) Error() string {
	return e.TestError.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// New creates the host selected by cfg.Loader
func New(cfg *config.Config, logger *zap.Logger) (Host, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Loader {
	case config.LoaderInProcess, "":
		return NewInProcessHost(parser.NewParser(cfg.RootDir)), nil
	case config.LoaderProcess:
		return NewProcessHost(cfg, logger)
	}
	return nil, fmt.Errorf("%w: unknown loader %q", config.ErrInvalidConfig, cfg.Loader)
}

// toLoadError converts a parse failure into a recoverable LoadError
func toLoadError(file string, err error) *LoadError {
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		loc := syntaxErr.Location
		return &LoadError{
			TestError: domain.TestError{Message: syntaxErr.Message, Location: &loc},
			Cause:     err,
		}
	}
	return &LoadError{
		TestError: domain.TestError{Message: err.Error(), Location: &domain.Location{File: file}},
		Cause:     err,
	}
}
