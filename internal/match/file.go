package match

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/vvsotnikov/playwright/internal/domain"
)

// FileFilter selects test files and optionally a line and column inside them
type FileFilter struct {
	Re     *regexp.Regexp
	Exact  string
	Line   int // 0 means any line
	Column int // 0 means any column
}

var locationArg = regexp.MustCompile(`^(.*?):(\d+):?(\d+)?$`)

// ParseLocationArg parses a command-line argument of the form
// file[:line[:column]] into a FileFilter. The file part is a pattern.
func ParseLocationArg(arg string) (FileFilter, error) {
	file := arg
	var line, column int
	if m := locationArg.FindStringSubmatch(arg); m != nil {
		file = m[1]
		line, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			column, _ = strconv.Atoi(m[3])
		}
	}
	re, err := ForceRegexp(file)
	if err != nil {
		return FileFilter{}, fmt.Errorf("test file filter %q: %w", arg, err)
	}
	return FileFilter{Re: re, Line: line, Column: column}, nil
}

// ParseLocationArgs parses every argument with ParseLocationArg
func ParseLocationArgs(args []string) (FileFilters, error) {
	filters := make(FileFilters, 0, len(args))
	for _, arg := range args {
		f, err := ParseLocationArg(arg)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// MatchFile reports whether the filter selects the file path
func (f FileFilter) MatchFile(file string) bool {
	if f.Exact != "" {
		return filepath.Clean(f.Exact) == filepath.Clean(file)
	}
	if f.Re == nil {
		return true
	}
	return f.Re.MatchString(filepath.ToSlash(file))
}

// MatchLocation reports whether the filter selects a declaration
func (f FileFilter) MatchLocation(loc domain.Location) bool {
	if !f.MatchFile(loc.File) {
		return false
	}
	if f.Line != 0 && f.Line != loc.Line {
		return false
	}
	return f.Column == 0 || f.Column == loc.Column
}

// FileFilters is a set of filters combined with logical OR
type FileFilters []FileFilter

// MatchFile reports whether any filter selects the file. An empty set
// selects every file.
func (fs FileFilters) MatchFile(file string) bool {
	if len(fs) == 0 {
		return true
	}
	for _, f := range fs {
		if f.MatchFile(file) {
			return true
		}
	}
	return false
}

// HasLine reports whether any filter narrows down to a line
func (fs FileFilters) HasLine() bool {
	for _, f := range fs {
		if f.Line != 0 {
			return true
		}
	}
	return false
}

// MatchLocation reports whether any filter selects the declaration
func (fs FileFilters) MatchLocation(loc domain.Location) bool {
	for _, f := range fs {
		if f.MatchLocation(loc) {
			return true
		}
	}
	return false
}
