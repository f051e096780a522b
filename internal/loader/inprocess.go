package loader

import (
	"context"

	"github.com/vvsotnikov/playwright/internal/parser"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// InProcessHost parses test files inside the current process
type InProcessHost struct {
	parser *parser.Parser
}

// NewInProcessHost creates a new InProcessHost
func NewInProcessHost(p *parser.Parser) *InProcessHost {
	return &InProcessHost{parser: p}
}

// LoadTestFile parses file
func (h *InProcessHost) LoadTestFile(ctx context.Context, file string) (*suite.Suite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fileSuite, err := h.parser.ParseFile(ctx, file)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return fileSuite, toLoadError(file, err)
	}
	return fileSuite, nil
}

// Stop is a no-op for the in-process host
func (h *InProcessHost) Stop() error {
	return nil
}
