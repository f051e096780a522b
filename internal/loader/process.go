package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// WorkerCommand is the hidden subcommand that runs a loader worker
const WorkerCommand = "loader-worker"

var errStopped = errors.New("loader host is stopped")

// ProcessOption customizes a ProcessHost
type ProcessOption func(*ProcessHost)

// WithCommand replaces the worker executable and its arguments
func WithCommand(command string, args ...string) ProcessOption {
	return func(h *ProcessHost) {
		h.command = command
		h.args = args
	}
}

// WithEnv adds environment variables to every worker
func WithEnv(env ...string) ProcessOption {
	return func(h *ProcessHost) {
		h.env = append(h.env, env...)
	}
}

// ProcessHost loads test files in a pool of isolated worker processes
type ProcessHost struct {
	cfg     *config.Config
	logger  *zap.Logger
	command string
	args    []string
	env     []string

	ctx     context.Context
	cancel  context.CancelFunc
	workers []*worker
	idle    chan *worker

	stopOnce sync.Once
	stopErr  error
}

// NewProcessHost starts cfg.Workers worker processes. By default workers
// run the current executable with the loader-worker subcommand.
func NewProcessHost(cfg *config.Config, logger *zap.Logger, opts ...ProcessOption) (*ProcessHost, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ProcessHost{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	if h.command == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate pwt executable: %w", err)
		}
		h.command = exe
		h.args = []string{WorkerCommand, "--root-dir", cfg.RootDir}
	}

	workerCount := cfg.Workers
	if workerCount <= 0 {
		workerCount = 1
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.idle = make(chan *worker, workerCount)

	for i := 1; i <= workerCount; i++ {
		w, err := startWorker(h.ctx, i, h.command, h.args, h.env, cfg.RootDir)
		if err != nil {
			return nil, errors.Join(err, h.Stop())
		}
		h.workers = append(h.workers, w)
		h.idle <- w
	}
	logger.Debug("loader workers started", zap.Int("workers", workerCount), zap.String("command", h.command))
	return h, nil
}

// LoadTestFile dispatches file to the next idle worker
func (h *ProcessHost) LoadTestFile(ctx context.Context, file string) (*suite.Suite, error) {
	if h.ctx.Err() != nil {
		return nil, errStopped
	}
	var w *worker
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, errStopped
	case w = <-h.idle:
	}

	resp, err := w.load(file)
	if err != nil {
		// A broken worker never returns to the pool.
		h.logger.Error("loader worker failed", zap.Int("worker", w.id), zap.String("file", file), zap.Error(err))
		return nil, err
	}
	h.idle <- w

	h.logger.Debug("file loaded", zap.Int("worker", w.id), zap.String("file", file))
	fileSuite := decodeSuite(resp.Suite)
	switch {
	case resp.Fatal != "":
		return nil, fmt.Errorf("worker %d: %s", w.id, resp.Fatal)
	case resp.Error != nil:
		return fileSuite, &LoadError{TestError: *resp.Error}
	}
	return fileSuite, nil
}

// Stop closes every worker and waits for it to exit
func (h *ProcessHost) Stop() error {
	h.stopOnce.Do(func() {
		var errs []error
		for _, w := range h.workers {
			if err := w.stop(); err != nil {
				errs = append(errs, err)
			}
		}
		if h.cancel != nil {
			h.cancel()
		}
		h.stopErr = errors.Join(errs...)
		h.logger.Debug("loader workers stopped", zap.Int("workers", len(h.workers)))
	})
	return h.stopErr
}

var (
	_ Host = (*ProcessHost)(nil)
	_ Host = (*InProcessHost)(nil)
)
