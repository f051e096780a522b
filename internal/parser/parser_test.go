package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvsotnikov/playwright/internal/suite"
)

const sample = `import { test, expect } from '@playwright/test';
import { helper } from './helpers';

test.describe('login', () => {
  test('works @smoke', async ({ page }) => {
    test('nested calls are ignored', () => {});
  });
  test.only('focused', async () => {});
  test.skip('skipped', { tag: ['@slow', '@auth'] }, async () => {});
});

test.describe.serial(() => {
  test.describe.configure({ mode: 'parallel' });
  test("anonymous group", () => {});
});

it('top level', function () {});
`

func TestParseDeclarations(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "e2e", "login.spec.ts")

	p := NewParser(dir)
	fileSuite, err := p.Parse(context.Background(), file, []byte(sample))
	require.NoError(t, err)

	assert.Equal(t, suite.KindFile, fileSuite.Kind)
	assert.Equal(t, "e2e/login.spec.ts", fileSuite.Title)
	assert.Equal(t, []string{filepath.Join(dir, "e2e", "helpers")}, fileSuite.Imports)

	groups := fileSuite.Suites()
	require.Len(t, groups, 2)

	login := groups[0]
	assert.Equal(t, "login", login.Title)
	assert.Equal(t, 4, login.Location.Line)
	tests := login.Tests()
	require.Len(t, tests, 3)

	assert.Equal(t, "works @smoke", tests[0].Title)
	assert.Equal(t, []string{"@smoke"}, tests[0].Tags)
	assert.Equal(t, 5, tests[0].Location.Line)
	assert.Equal(t, 3, tests[0].Location.Column)

	assert.True(t, tests[1].Only)
	assert.Equal(t, []string{"skip"}, tests[2].Annotations)
	assert.Equal(t, []string{"@slow", "@auth"}, tests[2].Tags)

	anonymous := groups[1]
	assert.Empty(t, anonymous.Title)
	assert.Equal(t, suite.ModeParallel, anonymous.Mode)
	require.Len(t, anonymous.Tests(), 1)
	assert.Equal(t, []string{"e2e/login.spec.ts", "anonymous group"}, anonymous.Tests()[0].TitlePath())

	top := fileSuite.Tests()
	require.Len(t, top, 1)
	assert.Equal(t, "top level", top[0].Title)
	assert.Len(t, fileSuite.AllTests(), 5)
}

func TestParseRequire(t *testing.T) {
	src := `const shared = require('../shared/login.spec');
const lib = require('lodash');
test('a', () => {});
`
	p := NewParser("/repo")
	fileSuite, err := p.Parse(context.Background(), "/repo/tests/a.test.js", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/shared/login.spec"}, fileSuite.Imports)
	assert.Len(t, fileSuite.Tests(), 1)
}

func TestParseSyntaxError(t *testing.T) {
	src := "test('ok', () => {});\ntest('broken', () => {\n"
	p := NewParser("/repo")
	fileSuite, err := p.Parse(context.Background(), "/repo/broken.spec.js", []byte(src))

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, "/repo/broken.spec.js", syntaxErr.Location.File)
	assert.Positive(t, syntaxErr.Location.Line)
	require.NotNil(t, fileSuite)
	assert.NotEmpty(t, fileSuite.Tests())
}

func TestParseFileMissing(t *testing.T) {
	p := NewParser("")
	_, err := p.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.spec.ts"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, `it's`, unescape(`it\'s`))
	assert.Equal(t, "a\nb", unescape(`a\nb`))
	assert.Equal(t, "plain", unescape("plain"))
}
