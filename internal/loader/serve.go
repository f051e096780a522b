package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vvsotnikov/playwright/internal/parser"
)

const maxRequestSize = 1 << 20

// Serve answers load requests read from r until r is exhausted or ctx is
// done. It is the main loop of a loader worker process.
func Serve(ctx context.Context, r io.Reader, w io.Writer, p *parser.Parser) error {
	host := NewInProcessHost(p)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
	out := bufio.NewWriter(w)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			return fmt.Errorf("decode request: %w", err)
		}

		resp := response{ID: req.ID}
		fileSuite, err := host.LoadTestFile(ctx, req.File)
		var loadErr *LoadError
		switch {
		case err == nil:
		case errors.As(err, &loadErr):
			resp.Error = &loadErr.TestError
		default:
			resp.Fatal = err.Error()
		}
		resp.Suite = encodeSuite(fileSuite)

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}
