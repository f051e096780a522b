package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// Save writes the assembled root suite and the collected errors to the
// configured JSON output file.
func (s *JSONStorage) Save(root *suite.Suite, errs []domain.TestError) error {
	output := BuildListing(root, errs)
	output.Meta.Shard = s.cfg.Shard.String()
	return s.SaveOutput(&output)
}

// Load reads the last listing from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.ListingOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listing file: %w", err)
	}
	var output domain.ListingOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *domain.ListingOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

// BuildListing flattens a root suite into a listing report
func BuildListing(root *suite.Suite, errs []domain.TestError) domain.ListingOutput {
	output := domain.ListingOutput{
		Tests:  []domain.ListedTest{},
		Errors: slices.Clone(errs),
	}
	if output.Errors == nil {
		output.Errors = []domain.TestError{}
	}

	files := make(map[string]bool)
	for _, t := range root.AllTests() {
		files[t.Location.File] = true
		output.Tests = append(output.Tests, domain.ListedTest{
			ID:              t.ID,
			Project:         t.ProjectName,
			File:            t.Location.File,
			Line:            t.Location.Line,
			Column:          t.Location.Column,
			TitlePath:       t.TitlesBelowFile(),
			RepeatEachIndex: t.RepeatEachIndex,
			Only:            t.Only,
			Annotations:     t.Annotations,
			Tags:            t.Tags,
		})
	}

	output.Meta = domain.ListingMeta{
		Projects:  len(root.Suites()),
		Files:     len(files),
		Tests:     len(output.Tests),
		Errors:    len(output.Errors),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return output
}

// RestoreRoot rebuilds a suite tree from a stored listing. Group locations
// are not stored, so restored groups carry none.
func RestoreRoot(output *domain.ListingOutput, rootDir string) *suite.Suite {
	root := suite.NewRoot()
	projects := make(map[string]*suite.Suite)
	groups := make(map[string]*suite.Suite)

	for _, lt := range output.Tests {
		project, ok := projects[lt.Project]
		if !ok {
			project = suite.New(suite.KindProject, lt.Project)
			project.ProjectName = lt.Project
			projects[lt.Project] = project
			root.AddSuite(project)
		}

		fileKey := strings.Join([]string{lt.Project, lt.File, strconv.Itoa(lt.RepeatEachIndex)}, "\x00")
		parent, ok := groups[fileKey]
		if !ok {
			title := lt.File
			if rel, err := filepath.Rel(rootDir, lt.File); err == nil && !strings.HasPrefix(rel, "..") {
				title = filepath.ToSlash(rel)
			}
			parent = suite.New(suite.KindFile, title)
			parent.Location = &domain.Location{File: lt.File}
			parent.ProjectName = lt.Project
			parent.RepeatEachIndex = lt.RepeatEachIndex
			groups[fileKey] = parent
			project.AddSuite(parent)
		}

		if len(lt.TitlePath) == 0 {
			continue
		}
		key := fileKey
		for _, title := range lt.TitlePath[:len(lt.TitlePath)-1] {
			key += "\x00" + title
			group, ok := groups[key]
			if !ok {
				group = suite.New(suite.KindDescribe, title)
				group.ProjectName = lt.Project
				group.RepeatEachIndex = lt.RepeatEachIndex
				groups[key] = group
				parent.AddSuite(group)
			}
			parent = group
		}
		parent.AddTest(&suite.Test{
			Title:           lt.TitlePath[len(lt.TitlePath)-1],
			Location:        domain.Location{File: lt.File, Line: lt.Line, Column: lt.Column},
			Only:            lt.Only,
			Annotations:     lt.Annotations,
			Tags:            lt.Tags,
			ID:              lt.ID,
			ProjectName:     lt.Project,
			RepeatEachIndex: lt.RepeatEachIndex,
		})
	}
	return root
}
