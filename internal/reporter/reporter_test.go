package reporter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/storage"
	"github.com/vvsotnikov/playwright/internal/suite"
)

func init() {
	color.NoColor = true
}

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) OnBegin(root *suite.Suite)    { r.calls = append(r.calls, "begin") }
func (r *recorder) OnError(err domain.TestError) { r.calls = append(r.calls, "error:"+err.Message) }
func (r *recorder) OnEnd() error {
	r.calls = append(r.calls, "end")
	return r.err
}

func sampleRoot() *suite.Suite {
	root := suite.NewRoot()
	project := suite.New(suite.KindProject, "p")
	file := suite.New(suite.KindFile, "a.spec.ts")
	file.AddTest(&suite.Test{Title: "works", ProjectName: "p", Location: domain.Location{File: "/repo/a.spec.ts", Line: 1, Column: 1}})
	project.AddSuite(file)
	root.AddSuite(project)
	return root
}

func TestReportMulti(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("disk full")}

	err := Report(Multi{a, b}, sampleRoot(), []domain.TestError{{Message: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"begin", "error:x", "end"}, a.calls)
	assert.Equal(t, a.calls, b.calls)
}

func TestBuiltin(t *testing.T) {
	cfg := config.New()
	cfg.RootDir = t.TempDir()
	var out bytes.Buffer

	r, ok := Builtin("list", cfg, &out)
	require.True(t, ok)
	assert.IsType(t, &ListReporter{}, r)

	r, ok = Builtin("json", cfg, &out)
	require.True(t, ok)
	assert.IsType(t, &JSONReporter{}, r)

	_, ok = Builtin("html", cfg, &out)
	assert.False(t, ok)
}

func TestListReporter(t *testing.T) {
	cfg := config.New()
	cfg.RootDir = "/repo"
	var out bytes.Buffer
	r, _ := Builtin("list", cfg, &out)

	require.NoError(t, Report(r, sampleRoot(), []domain.TestError{{Message: "focused item"}}))
	assert.Contains(t, out.String(), "works :1")
	assert.Contains(t, out.String(), "1) focused item")
	assert.Contains(t, out.String(), "Test Files")
}

func TestJSONReporter(t *testing.T) {
	cfg := config.New()
	cfg.RootDir = t.TempDir()
	var out bytes.Buffer
	st := storage.NewJSONStorage(cfg)

	require.NoError(t, Report(NewJSONReporter(st, &out), sampleRoot(), nil))
	assert.Contains(t, out.String(), st.Path())

	loaded, err := st.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Tests, 1)
	assert.Equal(t, "p", loaded.Tests[0].Project)
}
