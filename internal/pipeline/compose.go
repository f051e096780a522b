package pipeline

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/match"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// testIDNamespace scopes the name-based UUIDs of tests
var testIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("pwt:test"))

// Filters narrow down the tests of a top-level project
type Filters struct {
	Files        match.FileFilters
	TitleMatcher match.TitleMatcher
}

// ComposeProjectSuite builds the suite of project from the loaded file
// suites. Files without a loaded suite are skipped. It returns nil when no
// test is left after filtering.
func ComposeProjectSuite(fileSuites map[string]*suite.Suite, project *config.Project, filters Filters, files []string) (*suite.Suite, error) {
	projectSuite := suite.New(suite.KindProject, project.Name)
	projectSuite.ProjectName = project.Name
	if project.IsFullyParallel() {
		projectSuite.Mode = suite.ModeParallel
	}

	repeatEach := max(project.RepeatEach, 1)
	for _, file := range files {
		fileSuite, ok := fileSuites[file]
		if !ok {
			continue
		}
		for repeatEachIndex := 0; repeatEachIndex < repeatEach; repeatEachIndex++ {
			clone := fileSuite.Clone()
			stamp(clone, project, repeatEachIndex)
			projectSuite.AddSuite(clone)
		}
	}

	if filters.Files.HasLine() {
		suite.FilterByLocation(projectSuite, filters.Files.MatchLocation)
	}

	keep, err := titlePredicate(project, filters.TitleMatcher)
	if err != nil {
		return nil, err
	}
	suite.FilterTestsRemoveEmpty(projectSuite, func(t *suite.Test) bool {
		return keep(match.RenderTitle(t.TitlePath()))
	})

	if len(projectSuite.AllTests()) == 0 {
		return nil, nil
	}
	return projectSuite, nil
}

// titlePredicate combines the project grep patterns with an optional
// command-line matcher
func titlePredicate(project *config.Project, cliMatcher match.TitleMatcher) (match.TitleMatcher, error) {
	grep, err := match.NewTitleMatcher(project.Grep)
	if err != nil {
		return nil, fmt.Errorf("project %q grep: %w", project.Name, err)
	}
	var grepInvert match.TitleMatcher
	if project.GrepInvert != "" {
		if grepInvert, err = match.NewTitleMatcher(project.GrepInvert); err != nil {
			return nil, fmt.Errorf("project %q grepInvert: %w", project.Name, err)
		}
	}

	return func(title string) bool {
		if grepInvert != nil && grepInvert(title) {
			return false
		}
		return grep(title) && (cliMatcher == nil || cliMatcher(title))
	}, nil
}

// stamp marks a cloned file suite with its project and repeat index and
// assigns stable test IDs
func stamp(fileSuite *suite.Suite, project *config.Project, repeatEachIndex int) {
	fileSuite.ProjectName = project.Name
	fileSuite.RepeatEachIndex = repeatEachIndex
	if project.IsFullyParallel() && fileSuite.Mode == suite.ModeDefault {
		fileSuite.Mode = suite.ModeParallel
	}

	relFile := fileSuite.Title
	if fileSuite.Location != nil {
		if rel, err := filepath.Rel(project.TestDir, fileSuite.Location.File); err == nil {
			relFile = filepath.ToSlash(rel)
		}
	}

	fileSuite.Walk(func(e suite.Entry) {
		switch v := e.(type) {
		case *suite.Suite:
			v.ProjectName = project.Name
			v.RepeatEachIndex = repeatEachIndex
		case *suite.Test:
			v.ProjectName = project.Name
			v.RepeatEachIndex = repeatEachIndex
			v.ID = testID(project.Name, relFile, v.TitlesBelowFile(), repeatEachIndex)
		}
	})
}

func testID(project, relFile string, titles []string, repeatEachIndex int) string {
	name := strings.Join([]string{project, relFile, strings.Join(titles, "\x1f"), strconv.Itoa(repeatEachIndex)}, "\x1e")
	return uuid.NewSHA1(testIDNamespace, []byte(name)).String()
}
