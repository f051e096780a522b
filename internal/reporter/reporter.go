// Package reporter defines the reporters notified about an assembled suite.
package reporter

import (
	"errors"
	"fmt"
	"io"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/storage"
	"github.com/vvsotnikov/playwright/internal/suite"
	"github.com/vvsotnikov/playwright/internal/ui"
)

// Reporter receives the assembled root suite and every collected error
type Reporter interface {
	OnBegin(root *suite.Suite)
	OnError(err domain.TestError)
	OnEnd() error
}

// Factory creates a reporter
type Factory func() Reporter

// Builtin returns the built-in reporter called name
func Builtin(name string, cfg *config.Config, out io.Writer) (Reporter, bool) {
	switch name {
	case "list":
		return NewListReporter(ui.NewFormatter(out, cfg.RootDir), cfg), true
	case "json":
		return NewJSONReporter(storage.NewJSONStorage(cfg), out), true
	}
	return nil, false
}

// Multi fans out every call to a list of reporters
type Multi []Reporter

func (m Multi) OnBegin(root *suite.Suite) {
	for _, r := range m {
		r.OnBegin(root)
	}
}

func (m Multi) OnError(err domain.TestError) {
	for _, r := range m {
		r.OnError(err)
	}
}

// OnEnd calls every reporter and joins their errors
func (m Multi) OnEnd() error {
	var errs []error
	for _, r := range m {
		if err := r.OnEnd(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Report runs a full reporter cycle for root and errs
func Report(r Reporter, root *suite.Suite, errs []domain.TestError) error {
	r.OnBegin(root)
	for _, e := range errs {
		r.OnError(e)
	}
	if err := r.OnEnd(); err != nil {
		return fmt.Errorf("reporter: %w", err)
	}
	return nil
}
