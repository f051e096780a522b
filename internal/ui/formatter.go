package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// Formatter formats and displays output
type Formatter struct {
	out     io.Writer
	rootDir string
}

// NewFormatter creates a new Formatter. Paths are shown relative to rootDir.
func NewFormatter(out io.Writer, rootDir string) *Formatter {
	return &Formatter{out: out, rootDir: rootDir}
}

// PrintTree prints the suite tree below root, one line per group or test
func (f *Formatter) PrintTree(root *suite.Suite) {
	tests := root.AllTests()
	if len(tests) == 0 {
		color.New(color.FgYellow).Fprintln(f.out, "No tests found")
		return
	}

	files := make(map[string]bool)
	for _, t := range tests {
		files[t.Location.File] = true
	}
	color.New(color.FgGreen).Fprintf(f.out, "Listing %d test(s) in %d file(s):\n", len(tests), len(files))
	f.printEntries(root, "")
}

func (f *Formatter) printEntries(s *suite.Suite, prefix string) {
	entries := s.Entries()
	for i, e := range entries {
		isLast := i == len(entries)-1
		connector, childPrefix := "├── ", "│   "
		if isLast {
			connector, childPrefix = "└── ", "    "
		}

		switch v := e.(type) {
		case *suite.Suite:
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, f.suiteLabel(v))
			f.printEntries(v, prefix+childPrefix)
		case *suite.Test:
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, f.testLabel(v))
		}
	}
}

func (f *Formatter) suiteLabel(s *suite.Suite) string {
	switch s.Kind {
	case suite.KindProject:
		title := s.Title
		if title == "" {
			title = "(default project)"
		}
		return color.New(color.FgMagenta, color.Bold).Sprint(title)
	case suite.KindFile:
		label := color.CyanString(s.Title)
		if s.RepeatEachIndex > 0 {
			label += color.New(color.FgHiBlack).Sprintf(" (repeat:%d)", s.RepeatEachIndex)
		}
		return label
	}
	title := s.Title
	if title == "" {
		title = "(anonymous)"
	}
	return title + markers(s.Only, s.Annotations, s.Tags)
}

func (f *Formatter) testLabel(t *suite.Test) string {
	return color.YellowString(t.Title) +
		color.New(color.FgHiBlack).Sprintf(" :%d", t.Location.Line) +
		markers(t.Only, t.Annotations, t.Tags)
}

func markers(only bool, annotations, tags []string) string {
	var parts []string
	if only {
		parts = append(parts, color.RedString("[only]"))
	}
	for _, a := range annotations {
		parts = append(parts, color.BlueString("[%s]", a))
	}
	for _, tag := range tags {
		parts = append(parts, color.GreenString(tag))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// PrintErrors prints errors collected while assembling the suite
func (f *Formatter) PrintErrors(errs []domain.TestError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(f.out)
	color.New(color.FgRed, color.Bold).Fprintf(f.out, "%d error(s) found:\n", len(errs))
	for i, e := range errs {
		location := ""
		if e.Location != nil {
			loc := *e.Location
			loc.File = f.relPath(loc.File)
			location = color.CyanString(loc.String()) + " "
		}
		fmt.Fprintf(f.out, "  %d) %s%s\n", i+1, location, color.RedString(e.Message))
	}
}

// PrintSummary prints the totals of an assembled suite
func (f *Formatter) PrintSummary(meta domain.ListingMeta) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	row := func(label string, c *color.Color, value any) {
		fmt.Fprintf(f.out, "│ %-31s │ ", label)
		c.Fprintf(f.out, "%-27v", value)
		fmt.Fprintln(f.out, " │")
	}
	white := color.New(color.FgWhite)
	row("Projects", white, meta.Projects)
	row("Test Files", white, meta.Files)
	row("Tests", color.New(color.FgGreen), meta.Tests)
	if meta.Errors > 0 {
		row("Errors", color.New(color.FgRed), meta.Errors)
	} else {
		row("Errors", white, meta.Errors)
	}
	if meta.Shard != "" {
		row("Shard", white, meta.Shard)
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")
}

func (f *Formatter) relPath(path string) string {
	if f.rootDir == "" {
		return path
	}
	if rel, err := filepath.Rel(f.rootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
