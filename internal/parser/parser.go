// Package parser turns JavaScript and TypeScript test files into file suites.
//
// Files are parsed with tree-sitter and never executed: declarations are
// recognized syntactically from calls such as test('title', fn),
// test.describe.only('group', fn) and test.skip('title', fn).
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// DefaultTestFunctions are the identifiers that declare tests
var DefaultTestFunctions = []string{"test", "it"}

// SyntaxError reports a file that could not be parsed completely
type SyntaxError struct {
	Location domain.Location
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Parser parses test files to extract their suites and tests
type Parser struct {
	rootDir       string
	testFunctions map[string]bool
}

// NewParser creates a new Parser. File suite titles are relative to rootDir.
func NewParser(rootDir string, testFunctions ...string) *Parser {
	if len(testFunctions) == 0 {
		testFunctions = DefaultTestFunctions
	}
	fns := make(map[string]bool, len(testFunctions))
	for _, fn := range testFunctions {
		fns[fn] = true
	}
	return &Parser{rootDir: rootDir, testFunctions: fns}
}

// ParseFile reads and parses a test file
func (p *Parser) ParseFile(ctx context.Context, file string) (*suite.Suite, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", file, err)
	}
	return p.Parse(ctx, file, content)
}

// Parse builds the file suite for content. When the source has syntax errors
// the declarations found so far are returned together with a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, file string, content []byte) (*suite.Suite, error) {
	ts := sitter.NewParser()
	defer ts.Close()
	ts.SetLanguage(languageFor(file))

	tree, err := ts.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	defer tree.Close()

	fileSuite := suite.New(suite.KindFile, p.title(file))
	fileSuite.Location = &domain.Location{File: file}

	w := &walker{
		file:          file,
		src:           content,
		testFunctions: p.testFunctions,
	}
	root := tree.RootNode()
	w.walk(root, fileSuite)
	fileSuite.Imports = w.imports

	if root.HasError() {
		return fileSuite, w.syntaxError(root)
	}
	return fileSuite, nil
}

func (p *Parser) title(file string) string {
	if p.rootDir != "" {
		if rel, err := filepath.Rel(p.rootDir, file); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(file)
}

func languageFor(file string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}
