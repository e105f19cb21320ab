package filefinder_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukzero/punp/internal/filefinder"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFind_DirectoryNonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tex"), "top level")
	writeFile(t, filepath.Join(dir, "sub", "b.tex"), "nested")

	got, err := filefinder.Find(filefinder.Config{Patterns: []string{dir}})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got[0], "a.tex")
}

func TestFind_DirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tex"), "top level")
	writeFile(t, filepath.Join(dir, "sub", "b.tex"), "nested")

	got, err := filefinder.Find(filefinder.Config{Patterns: []string{dir}, Recursive: true})

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFind_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tex"), "x")
	writeFile(t, filepath.Join(dir, "b.md"), "x")

	got, err := filefinder.Find(filefinder.Config{
		Patterns:   []string{dir},
		Extensions: []string{".tex"},
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "a.tex")
}

func TestFind_ExcludeGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.tex"), "x")
	writeFile(t, filepath.Join(dir, "generated.tex"), "x")

	got, err := filefinder.Find(filefinder.Config{
		Patterns: []string{dir},
		Exclude:  []string{"generated.tex"},
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "keep.tex")
}

func TestFind_ExcludesRuleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tex"), "x")
	writeFile(t, filepath.Join(dir, ".punprules"), "REPLACE(FROM \"a\", TO \"b\");")

	got, err := filefinder.Find(filefinder.Config{
		Patterns: []string{dir},
		RuleFile: ".punprules",
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "a.tex")
}

func TestFind_DeduplicatesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tex"), "x")

	got, err := filefinder.Find(filefinder.Config{
		Patterns: []string{dir, filepath.Join(dir, "a.tex")},
	})

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFind_LatexIncludeFollowing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.tex"), `\documentclass{article}\input{chapters/intro}\include{chapters/body.tex}`)
	writeFile(t, filepath.Join(dir, "chapters", "intro.tex"), "intro content")
	writeFile(t, filepath.Join(dir, "chapters", "body.tex"), "body content")

	got, err := filefinder.Find(filefinder.Config{
		Patterns:    []string{filepath.Join(dir, "main.tex")},
		FollowLatex: true,
	})

	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFind_LatexCyclesDoNotHang(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tex"), `\input{b}`)
	writeFile(t, filepath.Join(dir, "b.tex"), `\input{a}`)

	got, err := filefinder.Find(filefinder.Config{
		Patterns:    []string{filepath.Join(dir, "a.tex")},
		FollowLatex: true,
	})

	require.NoError(t, err)
	assert.Len(t, got, 2)
}
