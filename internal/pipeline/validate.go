package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/suite"
)

const titleSeparator = " › "

// duplicateTitleErrors reports tests of a file suite that repeat the full
// title of an earlier test in the same file
func duplicateTitleErrors(rootDir string, fileSuite *suite.Suite) []domain.TestError {
	var errs []domain.TestError
	first := make(map[string]*suite.Test)
	for _, t := range fileSuite.AllTests() {
		fullTitle := strings.Join(t.TitlesBelowFile(), titleSeparator)
		existing, ok := first[fullTitle]
		if !ok {
			first[fullTitle] = t
			continue
		}
		loc := t.Location
		errs = append(errs, domain.TestError{
			Message:  fmt.Sprintf("duplicate test title %q, first declared in %s", fullTitle, itemLocation(rootDir, existing.Location)),
			Location: &loc,
		})
	}
	return errs
}

// forbidOnlyErrors reports every focused test and group below root
func forbidOnlyErrors(root *suite.Suite) []domain.TestError {
	var errs []domain.TestError
	for _, item := range suite.OnlyItems(root) {
		title := strings.Join(item.TitlesBelowFile(), titleSeparator)
		errs = append(errs, domain.TestError{
			Message:  fmt.Sprintf("focused item found in the --forbid-only mode: %q", title),
			Location: item.EntryLocation(),
		})
	}
	return errs
}

// importErrors reports test files importing other loaded test files
func importErrors(rootDir string, fileSuites map[string]*suite.Suite, files []string) []domain.TestError {
	var errs []domain.TestError
	for _, file := range files {
		fileSuite, ok := fileSuites[file]
		if !ok {
			continue
		}
		for _, imported := range fileSuite.Imports {
			if target, ok := importedTestFile(fileSuites, imported); ok {
				errs = append(errs, domain.TestError{
					Message:  fmt.Sprintf("test file %q should not import test file %q", relPath(rootDir, file), relPath(rootDir, target)),
					Location: &domain.Location{File: file},
				})
			}
		}
	}
	return errs
}

// importedTestFile resolves an extensionless import against the loaded files
func importedTestFile(fileSuites map[string]*suite.Suite, imported string) (string, bool) {
	if _, ok := fileSuites[imported]; ok {
		return imported, true
	}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts"} {
		if _, ok := fileSuites[imported+ext]; ok {
			return imported + ext, true
		}
	}
	return "", false
}

func itemLocation(rootDir string, loc domain.Location) string {
	return fmt.Sprintf("%s:%d", relPath(rootDir, loc.File), loc.Line)
}

func relPath(rootDir, file string) string {
	if rel, err := filepath.Rel(rootDir, file); err == nil {
		return filepath.ToSlash(rel)
	}
	return file
}
