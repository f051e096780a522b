package reporter

import (
	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/storage"
	"github.com/vvsotnikov/playwright/internal/suite"
	"github.com/vvsotnikov/playwright/internal/ui"
)

// ListReporter prints the suite tree, the errors and a summary
type ListReporter struct {
	formatter *ui.Formatter
	cfg       *config.Config
	root      *suite.Suite
	errs      []domain.TestError
}

// NewListReporter creates a new ListReporter
func NewListReporter(formatter *ui.Formatter, cfg *config.Config) *ListReporter {
	return &ListReporter{formatter: formatter, cfg: cfg}
}

func (r *ListReporter) OnBegin(root *suite.Suite) {
	r.root = root
	r.formatter.PrintTree(root)
}

func (r *ListReporter) OnError(err domain.TestError) {
	r.errs = append(r.errs, err)
}

func (r *ListReporter) OnEnd() error {
	r.formatter.PrintErrors(r.errs)
	if r.root == nil {
		return nil
	}
	meta := storage.BuildListing(r.root, r.errs).Meta
	meta.Shard = r.cfg.Shard.String()
	r.formatter.PrintSummary(meta)
	return nil
}
