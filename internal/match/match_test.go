package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvsotnikov/playwright/internal/domain"
)

func TestParseLocationArg(t *testing.T) {
	tests := []struct {
		arg          string
		line, column int
		matches      string
	}{
		{arg: "a.spec.ts", matches: "/repo/tests/a.spec.ts"},
		{arg: "a.spec.ts:12", line: 12, matches: "/repo/a.spec.ts"},
		{arg: "a.spec.ts:12:3", line: 12, column: 3, matches: "/repo/a.spec.ts"},
		{arg: "/LOGIN/i", matches: "/repo/login.spec.ts"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			f, err := ParseLocationArg(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.line, f.Line)
			assert.Equal(t, tt.column, f.Column)
			assert.True(t, f.MatchFile(tt.matches))
		})
	}
}

func TestParseLocationArgInvalid(t *testing.T) {
	_, err := ParseLocationArgs([]string{"ok", "("})
	assert.Error(t, err)
}

func TestFileFilters(t *testing.T) {
	filters, err := ParseLocationArgs([]string{"a.spec", "b.spec.ts:7"})
	require.NoError(t, err)

	assert.True(t, filters.MatchFile("/repo/a.spec.ts"))
	assert.True(t, filters.MatchFile("/repo/b.spec.ts"))
	assert.False(t, filters.MatchFile("/repo/c.spec.ts"))
	assert.True(t, filters.HasLine())

	assert.True(t, filters.MatchLocation(domain.Location{File: "/repo/b.spec.ts", Line: 7, Column: 1}))
	assert.False(t, filters.MatchLocation(domain.Location{File: "/repo/b.spec.ts", Line: 8, Column: 1}))
	assert.True(t, filters.MatchLocation(domain.Location{File: "/repo/a.spec.ts", Line: 99, Column: 1}))

	var none FileFilters
	assert.True(t, none.MatchFile("/anything.ts"))
	assert.False(t, none.HasLine())
}

func TestExactFilter(t *testing.T) {
	f := FileFilter{Exact: "/repo/a.spec.ts"}
	assert.True(t, f.MatchFile("/repo/./a.spec.ts"))
	assert.False(t, f.MatchFile("/repo/b/a.spec.ts"))
}

func TestTitleMatchers(t *testing.T) {
	all, err := NewTitleMatcher("")
	require.NoError(t, err)
	assert.True(t, all("anything"))

	login, err := NewTitleMatcher("/login/i")
	require.NoError(t, err)
	assert.True(t, login("chromium a.spec.ts LOGIN works"))

	slow, err := NewTitleMatcher("@slow")
	require.NoError(t, err)
	m := And(login, Not(slow), nil)
	assert.True(t, m("login fast"))
	assert.False(t, m("login @slow"))
	assert.False(t, m("logout"))

	_, err = NewTitleMatcher("[")
	assert.Error(t, err)
}

func TestForceRegexp(t *testing.T) {
	re, err := ForceRegexp("/a.b/s")
	require.NoError(t, err)
	assert.Equal(t, "(?s)a.b", re.String())

	re, err = ForceRegexp("/path/to/file")
	require.NoError(t, err)
	assert.Equal(t, "/path/to/file", re.String(), "unknown flags keep the pattern as-is")
}

func TestRenderTitle(t *testing.T) {
	assert.Equal(t, "chromium a.spec.ts group test", RenderTitle([]string{"chromium", "a.spec.ts", "group", "test"}))
}
