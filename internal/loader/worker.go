package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// worker is one loader worker process speaking the JSON-lines protocol
type worker struct {
	id     int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner
	stderr *lockedBuffer
	nextID int
}

// startWorker launches a worker process
func startWorker(ctx context.Context, id int, command string, args, env []string, dir string) (*worker, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	// Set environment variables
	cmd.Env = os.Environ() // Start with current environment
	cmd.Env = append(cmd.Env, env...)
	cmd.Env = append(cmd.Env, fmt.Sprintf("PWT_LOADER_WORKER_ID=%d", id))

	// Set working directory
	cmd.Dir = dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("worker %d stdin: %w", id, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker %d stdout: %w", id, err)
	}
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %d: %w", id, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	return &worker{id: id, cmd: cmd, stdin: stdin, stdout: scanner, stderr: stderr}, nil
}

// load sends one request and waits for its response
func (w *worker) load(file string) (response, error) {
	w.nextID++
	req := request{ID: w.nextID, File: file}
	line, err := json.Marshal(req)
	if err != nil {
		return response{}, err
	}
	if _, err := w.stdin.Write(append(line, '\n')); err != nil {
		return response{}, w.exited(fmt.Errorf("send request: %w", err))
	}

	if !w.stdout.Scan() {
		err := w.stdout.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return response{}, w.exited(err)
	}
	var resp response
	if err := json.Unmarshal(w.stdout.Bytes(), &resp); err != nil {
		return response{}, fmt.Errorf("worker %d: decode response: %w", w.id, err)
	}
	if resp.ID != req.ID {
		return response{}, fmt.Errorf("worker %d: response %d does not match request %d", w.id, resp.ID, req.ID)
	}
	return resp, nil
}

// stop closes stdin and waits for the process to exit
func (w *worker) stop() error {
	_ = w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		return w.exited(err)
	}
	return nil
}

func (w *worker) exited(err error) error {
	if tail := strings.TrimSpace(w.stderr.String()); tail != "" {
		return fmt.Errorf("worker %d exited unexpectedly: %w: %s", w.id, err, tail)
	}
	return fmt.Errorf("worker %d exited unexpectedly: %w", w.id, err)
}

// lockedBuffer collects stderr written by the exec copier goroutine
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
