package commands

import (
	"context"
	"io"
	"os"

	"github.com/vvsotnikov/playwright/internal/loader"
	"github.com/vvsotnikov/playwright/internal/parser"
)

// WorkerCommand serves load requests for the process loader
type WorkerCommand struct{}

// NewWorkerCommand creates a new WorkerCommand
func NewWorkerCommand() *WorkerCommand {
	return &WorkerCommand{}
}

// Execute serves requests until stdin is closed
func (wc *WorkerCommand) Execute(ctx context.Context, rootDir string, in io.Reader, out io.Writer) error {
	if rootDir == "" {
		if wd, err := os.Getwd(); err == nil {
			rootDir = wd
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return loader.Serve(ctx, in, out, parser.NewParser(rootDir))
}
