package reporter

import (
	"fmt"
	"io"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/storage"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// JSONReporter writes the listing report through storage
type JSONReporter struct {
	storage storage.Storage
	out     io.Writer
	root    *suite.Suite
	errs    []domain.TestError
}

// NewJSONReporter creates a new JSONReporter. A confirmation line is written to out.
func NewJSONReporter(st storage.Storage, out io.Writer) *JSONReporter {
	return &JSONReporter{storage: st, out: out}
}

func (r *JSONReporter) OnBegin(root *suite.Suite) {
	r.root = root
}

func (r *JSONReporter) OnError(err domain.TestError) {
	r.errs = append(r.errs, err)
}

func (r *JSONReporter) OnEnd() error {
	if r.root == nil {
		r.root = suite.NewRoot()
	}
	if err := r.storage.Save(r.root, r.errs); err != nil {
		return fmt.Errorf("save listing: %w", err)
	}
	if js, ok := r.storage.(*storage.JSONStorage); ok && r.out != nil {
		fmt.Fprintf(r.out, "Listing written to %s\n", js.Path())
	}
	return nil
}
