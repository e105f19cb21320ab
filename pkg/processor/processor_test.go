package processor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukzero/punp/pkg/contract"
	"github.com/haukzero/punp/pkg/matcher"
	"github.com/haukzero/punp/pkg/processor"
)

func writeTemp(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func newProcessor(rep contract.ReplacementMap, protected []contract.ProtectedRegionSpec) *processor.Processor {
	return processor.New(processor.Options{
		Matcher:   matcher.Build(rep),
		Protected: protected,
	})
}

func TestProcess_BasicReplace(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "s1.txt", []byte("hello, world."))

	p := newProcessor(contract.ReplacementMap{",": "，", ".": "。"}, nil)
	defer p.Close()

	results := p.Process(context.Background(), []string{path}, 1)

	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.Equal(t, 2, results[0].ReplacementCount)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello， world。", string(got))
}

func TestProcess_ProtectedSpanUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "s3.txt", []byte("a, b `c, d` e."))

	p := newProcessor(
		contract.ReplacementMap{",": "，", ".": "。"},
		[]contract.ProtectedRegionSpec{{Start: "`", End: "`"}},
	)
	defer p.Close()

	results := p.Process(context.Background(), []string{path}, 1)

	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.Equal(t, 2, results[0].ReplacementCount)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a， b `c, d` e。", string(got))
}

func TestProcess_UnterminatedProtectorStillProcesses(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "s5.txt", []byte("before `unterminated, after."))

	p := newProcessor(
		contract.ReplacementMap{",": "，", ".": "。"},
		[]contract.ProtectedRegionSpec{{Start: "`", End: "`"}},
	)
	defer p.Close()

	results := p.Process(context.Background(), []string{path}, 1)

	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.Equal(t, 2, results[0].ReplacementCount)
}

func TestProcess_BinaryFileFailsAndIsUntouched(t *testing.T) {
	dir := t.TempDir()
	raw := make([]byte, 64)
	for i := 0; i < 32; i++ {
		raw[i] = 0
	}
	for i := 32; i < 64; i++ {
		raw[i] = 'a'
	}
	path := writeTemp(t, dir, "s6.bin", raw)

	p := newProcessor(contract.ReplacementMap{"a": "b"}, nil)
	defer p.Close()

	results := p.Process(context.Background(), []string{path}, 1)

	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Equal(t, contract.LoadFailureMessage, results[0].ErrMsg)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestProcess_NoOpLeavesFileByteIdentical(t *testing.T) {
	dir := t.TempDir()
	original := []byte("nothing to replace here")
	path := writeTemp(t, dir, "s7.txt", original)
	before, err := os.Stat(path)
	require.NoError(t, err)

	p := newProcessor(contract.ReplacementMap{"z": "y"}, nil)
	defer p.Close()

	results := p.Process(context.Background(), []string{path}, 1)

	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.Equal(t, 0, results[0].ReplacementCount)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestProcess_MultiThreadedDeterminism(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	content := "the quick, brown fox. jumps, over. the lazy, dog."
	for i := 0; i < 12; i++ {
		paths = append(paths, writeTemp(t, dir, filepath.Base(dir)+string(rune('a'+i))+".txt", []byte(content)))
	}

	rep := contract.ReplacementMap{",": "，", ".": "。"}

	p1 := newProcessor(rep, nil)
	seq := p1.Process(context.Background(), paths, 1)
	p1.Close()

	// Restore inputs before the second run.
	for _, path := range paths {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	p16 := newProcessor(rep, nil)
	par := p16.Process(context.Background(), paths, 16)
	p16.Close()

	require.Len(t, seq, len(paths))
	require.Len(t, par, len(paths))
	for i := range paths {
		assert.Equal(t, seq[i].ReplacementCount, par[i].ReplacementCount)
		assert.Equal(t, seq[i].OK, par[i].OK)
	}
}

func TestProcess_EmptyBatch(t *testing.T) {
	p := newProcessor(contract.ReplacementMap{"a": "b"}, nil)
	defer p.Close()

	results := p.Process(context.Background(), nil, 0)

	assert.Empty(t, results)
}
