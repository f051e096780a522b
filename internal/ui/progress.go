package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar shows test file loading progress
type ProgressBar struct {
	out    io.Writer
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	loaded int
}

// NewProgressBar creates a new progress bar writing to out
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out}
}

// Start resets the bar for total files
func (p *ProgressBar) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = 0
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describe(0, total, "")),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Advance records one loaded file
func (p *ProgressBar) Advance(file string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	p.loaded++
	_ = p.bar.Add(1)
	p.bar.Describe(describe(p.loaded, p.bar.GetMax(), file))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Loaded returns the number of files reported so far
func (p *ProgressBar) Loaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

func describe(loaded, total int, file string) string {
	desc := color.CyanString("Loading test files: ") + color.GreenString("[%d/%d]", loaded, total)
	if file != "" {
		desc += " " + filepath.Base(file)
	}
	return desc
}
