package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/discovery"
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/loader"
	"github.com/vvsotnikov/playwright/internal/match"
	"github.com/vvsotnikov/playwright/internal/parser"
	"github.com/vvsotnikov/playwright/internal/suite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const rootDir = "/repo"

var sources = map[string]string{
	"/repo/tests/a.spec.ts": "test.describe('suite A', () => {\n  test('does X', () => {});\n  test('does Y', () => {});\n});\n",
	"/repo/tests/b.spec.ts": "test('b1', () => {});\ntest('b2', () => {});\n",
	"/repo/tests/c.spec.ts": "test('c1', () => {});\n",
	"/repo/tests/d.spec.ts": "test('d1', () => {});\n",
	"/repo/setup/auth.setup.ts": "test('authenticate', () => {});\n",
	"/repo/db/db.setup.ts":      "test('migrate', () => {});\n",
}

type fakeLister struct {
	files map[string][]string
	err   error
}

func (l *fakeLister) ListFiles(_ context.Context, project *config.Project, _ *discovery.FSCache) ([]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.files[project.Name], nil
}

// countingHost parses in-memory sources and records every call
type countingHost struct {
	mu      sync.Mutex
	parser  *parser.Parser
	sources map[string]string
	loads   map[string]int
	loaded  map[string]*suite.Suite
	fatal   map[string]error
	stopErr error
	stops   int
}

func newCountingHost(srcs map[string]string) *countingHost {
	return &countingHost{
		parser:  parser.NewParser(rootDir),
		sources: srcs,
		loads:   make(map[string]int),
		loaded:  make(map[string]*suite.Suite),
		fatal:   make(map[string]error),
	}
}

func (h *countingHost) LoadTestFile(ctx context.Context, file string) (*suite.Suite, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads[file]++
	if err := h.fatal[file]; err != nil {
		return nil, err
	}
	src, ok := h.sources[file]
	if !ok {
		return nil, &loader.LoadError{TestError: domain.TestError{
			Message:  "cannot find module",
			Location: &domain.Location{File: file},
		}}
	}
	fileSuite, err := h.parser.Parse(ctx, file, []byte(src))
	if err != nil {
		return fileSuite, &loader.LoadError{TestError: domain.TestError{Message: err.Error()}}
	}
	h.loaded[file] = fileSuite
	return fileSuite, nil
}

func (h *countingHost) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
	return h.stopErr
}

func project(name, testDir string, deps ...*config.Project) *config.Project {
	p := &config.Project{Name: name, TestDir: testDir, RepeatEach: 1}
	p.SetDeps(deps...)
	return p
}

func testConfig(projects ...*config.Project) *config.Config {
	cfg := config.New()
	cfg.RootDir = rootDir
	cfg.Workers = 2
	cfg.Projects = projects
	return cfg
}

func newTestPipeline(cfg *config.Config, lister discovery.FileLister, host loader.Host) *Pipeline {
	return New(cfg, lister, func() (loader.Host, error) { return host, nil }, zap.NewNop())
}

// layout renders the root as project/file-title/test entries
func layout(root *suite.Suite) []string {
	var out []string
	for _, t := range root.AllTests() {
		out = append(out, match.RenderTitle(t.TitlePath()))
	}
	return out
}

func ids(root *suite.Suite) []string {
	var out []string
	for _, t := range root.AllTests() {
		out = append(out, t.ID)
	}
	sort.Strings(out)
	return out
}

func TestLoadAllTestsLoadsSharedFilesOnce(t *testing.T) {
	setup := project("setup", "/repo/setup")
	chromium := project("chromium", "/repo/tests", setup)
	firefox := project("firefox", "/repo/tests", setup)
	lister := &fakeLister{files: map[string][]string{
		"setup":    {"/repo/setup/auth.setup.ts"},
		"chromium": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"},
		"firefox":  {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"},
	}}
	host := newCountingHost(sources)
	sink := domain.NewErrorSink()

	root, err := newTestPipeline(testConfig(setup, chromium, firefox), lister, host).
		LoadAllTests(context.Background(), Options{}, sink)
	require.NoError(t, err)

	assert.Len(t, host.loads, 3)
	for file, n := range host.loads {
		assert.Equal(t, 1, n, file)
	}
	assert.Equal(t, 1, host.stops)
	assert.Zero(t, sink.Len())

	projects := root.Suites()
	require.Len(t, projects, 3)
	assert.Equal(t, "setup", projects[0].Title)
	assert.Equal(t, "chromium", projects[1].Title)
	assert.Equal(t, "firefox", projects[2].Title)
	assert.Len(t, root.AllTests(), 9)

	// loaded file suites are shared and never stamped
	for _, fileSuite := range host.loaded {
		assert.Empty(t, fileSuite.ProjectName)
		assert.Nil(t, fileSuite.Parent())
	}
}

func TestLoadAllTestsDependenciesAreUnfiltered(t *testing.T) {
	setup := project("setup", "/repo/setup")
	chromium := project("chromium", "/repo/tests", setup)
	firefox := project("firefox", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{
		"setup":    {"/repo/setup/auth.setup.ts"},
		"chromium": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"},
		"firefox":  {"/repo/tests/b.spec.ts"},
	}}
	filters, err := match.ParseLocationArgs([]string{"a.spec"})
	require.NoError(t, err)
	grep, err := match.NewTitleMatcher("does X")
	require.NoError(t, err)

	root, err := newTestPipeline(testConfig(setup, chromium, firefox), lister, newCountingHost(sources)).
		LoadAllTests(context.Background(), Options{
			TestFileFilters:  filters,
			TestTitleMatcher: grep,
			ProjectFilter:    []string{"SETUP", "Chromium"},
		}, domain.NewErrorSink())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"setup setup/auth.setup.ts authenticate",
		"chromium tests/a.spec.ts suite A does X",
	}, layout(root))
}

func TestLoadAllTestsDependencyProjects(t *testing.T) {
	tests := []struct {
		name          string
		projects      func() []*config.Project
		files         map[string][]string
		args          []string
		projectFilter []string
		wantProjects  []string
		wantLayout    []string
	}{
		{
			name: "transitive dependencies come before their dependents",
			projects: func() []*config.Project {
				db := project("db", "/repo/db")
				auth := project("auth", "/repo/setup", db)
				web := project("web", "/repo/tests", auth)
				return []*config.Project{db, auth, web}
			},
			files: map[string][]string{
				"db":   {"/repo/db/db.setup.ts"},
				"auth": {"/repo/setup/auth.setup.ts"},
				"web":  {"/repo/tests/c.spec.ts"},
			},
			projectFilter: []string{"web"},
			wantProjects:  []string{"db", "auth", "web"},
			wantLayout: []string{
				"db db/db.setup.ts migrate",
				"auth setup/auth.setup.ts authenticate",
				"web tests/c.spec.ts c1",
			},
		},
		{
			name: "file filter matching only a dependency runs it as top level",
			projects: func() []*config.Project {
				setup := project("setup", "/repo/setup")
				chromium := project("chromium", "/repo/tests", setup)
				return []*config.Project{setup, chromium}
			},
			files: map[string][]string{
				"setup":    {"/repo/setup/auth.setup.ts"},
				"chromium": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"},
			},
			args:         []string{"auth.setup"},
			wantProjects: []string{"setup"},
			wantLayout:   []string{"setup setup/auth.setup.ts authenticate"},
		},
		{
			name: "file filter matching a dependent keeps its dependency whole",
			projects: func() []*config.Project {
				setup := project("setup", "/repo/setup")
				chromium := project("chromium", "/repo/tests", setup)
				return []*config.Project{setup, chromium}
			},
			files: map[string][]string{
				"setup":    {"/repo/setup/auth.setup.ts"},
				"chromium": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"},
			},
			args:         []string{"b.spec"},
			wantProjects: []string{"setup", "chromium"},
			wantLayout: []string{
				"setup setup/auth.setup.ts authenticate",
				"chromium tests/b.spec.ts b1",
				"chromium tests/b.spec.ts b2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, err := match.ParseLocationArgs(tt.args)
			require.NoError(t, err)

			root, err := newTestPipeline(testConfig(tt.projects()...), &fakeLister{files: tt.files}, newCountingHost(sources)).
				LoadAllTests(context.Background(), Options{
					TestFileFilters: filters,
					ProjectFilter:   tt.projectFilter,
				}, domain.NewErrorSink())
			require.NoError(t, err)

			var names []string
			for _, s := range root.Suites() {
				names = append(names, s.Title)
			}
			assert.Equal(t, tt.wantProjects, names)
			assert.Equal(t, tt.wantLayout, layout(root))
		})
	}
}

func TestLoadAllTestsProjectGrep(t *testing.T) {
	setup := project("setup", "/repo/setup")
	setup.GrepInvert = "authenticate"
	chromium := project("chromium", "/repo/tests", setup)
	chromium.Grep = "/suite a/i"
	chromium.GrepInvert = "does Y"
	lister := &fakeLister{files: map[string][]string{
		"setup":    {"/repo/setup/auth.setup.ts"},
		"chromium": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"},
	}}

	root, err := newTestPipeline(testConfig(setup, chromium), lister, newCountingHost(sources)).
		LoadAllTests(context.Background(), Options{ProjectFilter: []string{"chromium"}}, domain.NewErrorSink())
	require.NoError(t, err)

	// the dependency keeps its own grepInvert and ends up empty
	assert.Equal(t, []string{"chromium tests/a.spec.ts suite A does X"}, layout(root))
	assert.Len(t, root.Suites(), 1)
}

func TestLoadAllTestsShards(t *testing.T) {
	p1 := project("p1", "/repo/tests")
	p2 := project("p2", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{
		"p1": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"},
		"p2": {"/repo/tests/c.spec.ts", "/repo/tests/d.spec.ts"},
	}}

	run := func(shard *config.Shard) *suite.Suite {
		cfg := testConfig(p1, p2)
		cfg.Shard = shard
		root, err := newTestPipeline(cfg, lister, newCountingHost(sources)).
			LoadAllTests(context.Background(), Options{}, domain.NewErrorSink())
		require.NoError(t, err)
		return root
	}

	all := run(nil)
	first := run(&config.Shard{Current: 1, Total: 2})
	second := run(&config.Shard{Current: 2, Total: 2})

	assert.Equal(t, []string{
		"p1 tests/a.spec.ts suite A does X",
		"p1 tests/a.spec.ts suite A does Y",
		"p1 tests/b.spec.ts b1",
		"p1 tests/b.spec.ts b2",
	}, layout(first))
	assert.Equal(t, []string{"p2 tests/c.spec.ts c1", "p2 tests/d.spec.ts d1"}, layout(second))

	union := append(ids(first), ids(second)...)
	sort.Strings(union)
	assert.Equal(t, ids(all), union)
}

func TestLoadAllTestsShardDropsUnneededDependencies(t *testing.T) {
	setup := project("setup", "/repo/setup")
	p1 := project("p1", "/repo/tests", setup)
	p2 := project("p2", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{
		"setup": {"/repo/setup/auth.setup.ts"},
		"p1":    {"/repo/tests/a.spec.ts"},
		"p2":    {"/repo/tests/c.spec.ts"},
	}}
	cfg := testConfig(setup, p1, p2)
	cfg.Shard = &config.Shard{Current: 2, Total: 2}
	host := newCountingHost(sources)

	root, err := newTestPipeline(cfg, lister, host).LoadAllTests(context.Background(), Options{}, domain.NewErrorSink())
	require.NoError(t, err)

	assert.Equal(t, []string{"p2 tests/c.spec.ts c1"}, layout(root))
	assert.NotContains(t, host.loads, "/repo/setup/auth.setup.ts")
}

func TestLoadAllTestsDuplicateTitles(t *testing.T) {
	srcs := map[string]string{
		"/repo/tests/dup.spec.ts": "test.describe('suite A', () => {\n  test('does X', () => {});\n  test('does X', () => {});\n});\n",
		"/repo/tests/b.spec.ts":   "test.describe('suite A', () => {\n  test('does X', () => {});\n});\n",
	}
	p := project("p", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{"p": {"/repo/tests/dup.spec.ts", "/repo/tests/b.spec.ts"}}}
	sink := domain.NewErrorSink()

	root, err := newTestPipeline(testConfig(p), lister, newCountingHost(srcs)).
		LoadAllTests(context.Background(), Options{}, sink)
	require.NoError(t, err)
	assert.Len(t, root.AllTests(), 3)

	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, `duplicate test title "suite A › does X", first declared in tests/dup.spec.ts:2`, errs[0].Message)
	require.NotNil(t, errs[0].Location)
	assert.Equal(t, domain.Location{File: "/repo/tests/dup.spec.ts", Line: 3, Column: 3}, *errs[0].Location)
}

func TestLoadAllTestsForbidOnly(t *testing.T) {
	srcs := map[string]string{
		"/repo/tests/a.spec.ts": "test.describe('suite A', () => {\n  test.only('does X', () => {});\n  test('does Y', () => {});\n});\n",
		"/repo/tests/b.spec.ts": "test('b1', () => {});\n",
	}
	p := project("p", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{"p": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"}}}
	cfg := testConfig(p)
	cfg.ForbidOnly = true
	sink := domain.NewErrorSink()

	root, err := newTestPipeline(cfg, lister, newCountingHost(srcs)).LoadAllTests(context.Background(), Options{}, sink)
	require.NoError(t, err)

	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, `focused item found in the --forbid-only mode: "suite A › does X"`, errs[0].Message)
	assert.Equal(t, 2, errs[0].Location.Line)
	assert.Equal(t, []string{"p tests/a.spec.ts suite A does X"}, layout(root))
}

func TestLoadAllTestsOnlyWithoutForbid(t *testing.T) {
	srcs := map[string]string{
		"/repo/tests/a.spec.ts": "test.describe.only('suite A', () => {\n  test('does X', () => {});\n  test('does Y', () => {});\n});\ntest('outside', () => {});\n",
	}
	p := project("p", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{"p": {"/repo/tests/a.spec.ts"}}}
	sink := domain.NewErrorSink()

	root, err := newTestPipeline(testConfig(p), lister, newCountingHost(srcs)).LoadAllTests(context.Background(), Options{}, sink)
	require.NoError(t, err)
	assert.Zero(t, sink.Len())
	assert.Equal(t, []string{
		"p tests/a.spec.ts suite A does X",
		"p tests/a.spec.ts suite A does Y",
	}, layout(root))
}

func TestLoadAllTestsRepeatEachAndFocusedLine(t *testing.T) {
	p := project("p", "/repo/tests")
	p.RepeatEach = 2
	lister := &fakeLister{files: map[string][]string{"p": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"}}}
	filters, err := match.ParseLocationArgs([]string{"a.spec.ts:3"})
	require.NoError(t, err)

	root, err := newTestPipeline(testConfig(p), lister, newCountingHost(sources)).
		LoadAllTests(context.Background(), Options{TestFileFilters: filters}, domain.NewErrorSink())
	require.NoError(t, err)

	tests := root.AllTests()
	require.Len(t, tests, 2)
	for i, test := range tests {
		assert.Equal(t, "does Y", test.Title)
		assert.Equal(t, i, test.RepeatEachIndex)
		assert.Equal(t, "p", test.ProjectName)
	}
	assert.NotEqual(t, tests[0].ID, tests[1].ID)
}

func TestLoadAllTestsRecordsLoadErrors(t *testing.T) {
	p := project("p", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{"p": {"/repo/tests/missing.spec.ts", "/repo/tests/c.spec.ts"}}}
	sink := domain.NewErrorSink()

	root, err := newTestPipeline(testConfig(p), lister, newCountingHost(sources)).
		LoadAllTests(context.Background(), Options{}, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"p tests/c.spec.ts c1"}, layout(root))

	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "/repo/tests/missing.spec.ts", errs[0].Location.File)
}

func TestLoadAllTestsFatalErrorsStopHost(t *testing.T) {
	p := project("p", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{"p": {"/repo/tests/a.spec.ts", "/repo/tests/c.spec.ts"}}}

	t.Run("loader crash", func(t *testing.T) {
		host := newCountingHost(sources)
		host.fatal["/repo/tests/c.spec.ts"] = errors.New("worker crashed")
		_, err := newTestPipeline(testConfig(p), lister, host).LoadAllTests(context.Background(), Options{}, domain.NewErrorSink())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "worker crashed")
		assert.Equal(t, 1, host.stops)
	})

	t.Run("stop failure", func(t *testing.T) {
		host := newCountingHost(sources)
		host.stopErr = errors.New("worker exited with status 1")
		_, err := newTestPipeline(testConfig(p), lister, host).LoadAllTests(context.Background(), Options{}, domain.NewErrorSink())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stop loader")
		assert.Equal(t, 1, host.stops)
	})

	t.Run("listing failure", func(t *testing.T) {
		host := newCountingHost(sources)
		failing := &fakeLister{err: errors.New("no such directory")}
		_, err := newTestPipeline(testConfig(p), failing, host).LoadAllTests(context.Background(), Options{}, domain.NewErrorSink())
		require.Error(t, err)
		assert.Zero(t, host.stops)
	})
}

func TestLoadAllTestsEmptyRoot(t *testing.T) {
	p := project("p", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{"p": {"/repo/tests/a.spec.ts"}}}

	root, err := newTestPipeline(testConfig(p), lister, newCountingHost(sources)).
		LoadAllTests(context.Background(), Options{ProjectFilter: []string{"unknown"}}, domain.NewErrorSink())
	require.NoError(t, err)
	assert.Empty(t, root.Suites())
}

func TestLoadAllTestsImportedTestFile(t *testing.T) {
	srcs := map[string]string{
		"/repo/tests/a.spec.ts": "import { helper } from './b.spec';\ntest('a', () => {});\n",
		"/repo/tests/b.spec.ts": "test('b', () => {});\n",
	}
	p := project("p", "/repo/tests")
	lister := &fakeLister{files: map[string][]string{"p": {"/repo/tests/a.spec.ts", "/repo/tests/b.spec.ts"}}}
	sink := domain.NewErrorSink()

	_, err := newTestPipeline(testConfig(p), lister, newCountingHost(srcs)).LoadAllTests(context.Background(), Options{}, sink)
	require.NoError(t, err)

	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, `test file "tests/a.spec.ts" should not import test file "tests/b.spec.ts"`, errs[0].Message)
}
