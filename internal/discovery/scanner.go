package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/vvsotnikov/playwright/internal/config"
)

// testFileExtensions are the only extensions a test file may have
var testFileExtensions = map[string]bool{
	".js":  true,
	".ts":  true,
	".mjs": true,
	".cjs": true,
	".jsx": true,
	".tsx": true,
}

// FileLister lists the test files that belong to a project
type FileLister interface {
	ListFiles(ctx context.Context, project *config.Project, cache *FSCache) ([]string, error)
}

// Scanner scans project test directories for test files
type Scanner struct {
	skipDirs map[string]bool
	logger   *zap.Logger
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string, logger *zap.Logger) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{skipDirs: skipMap, logger: logger}
}

// ListFiles returns the sorted absolute paths of the project's test files.
// The directory walk is shared through cache between projects with the
// same test directory. A missing test directory yields no files.
func (s *Scanner) ListFiles(ctx context.Context, project *config.Project, cache *FSCache) ([]string, error) {
	root, err := filepath.Abs(project.TestDir)
	if err != nil {
		return nil, fmt.Errorf("resolve test dir %s: %w", project.TestDir, err)
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("test dir does not exist",
			zap.String("project", project.Name),
			zap.String("test_dir", root))
		return nil, nil
	}

	all, ok := cache.Get(root)
	if !ok {
		all, err = s.Scan(ctx, root)
		if err != nil {
			return nil, err
		}
		cache.Add(root, all)
	}

	var files []string
	for _, file := range all {
		if !testFileExtensions[filepath.Ext(file)] {
			continue
		}
		rel, err := filepath.Rel(root, file)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if matchAny(project.TestIgnore, rel) || !matchAny(project.TestMatch, rel) {
			continue
		}
		files = append(files, file)
	}
	s.logger.Debug("listed project files",
		zap.String("project", project.Name),
		zap.String("test_dir", root),
		zap.Int("files", len(files)))
	return files, nil
}

// Scan finds all files in the given root directory
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	var files []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// matchAny reports whether the slash-separated relative path matches one of
// the globs. A glob without a slash also matches the base name.
func matchAny(globs []string, rel string) bool {
	for _, glob := range globs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
		if !strings.Contains(glob, "/") {
			if ok, _ := doublestar.Match(glob, filepath.Base(rel)); ok {
				return true
			}
		}
	}
	return false
}
