package projectconfig_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukzero/punp/internal/projectconfig"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".punp.yaml", `
inputs:
  - "src/**/*.tex"
extensions:
  - ".tex"
recursive: true
max_threads: 4
`)

	cfg, err := projectconfig.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"src/**/*.tex"}, cfg.Inputs)
	assert.True(t, cfg.Recursive)
	assert.Equal(t, 4, cfg.MaxThreads)
	assert.Equal(t, ".punprules", cfg.RuleFile)
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".punp.json", `{"inputs": ["docs"], "recursive": false}`)

	cfg, err := projectconfig.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, cfg.Inputs)
}

func TestLoad_HCL(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".punp.hcl", `
inputs = ["docs"]
max_threads = 8
`)

	cfg, err := projectconfig.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, cfg.Inputs)
	assert.Equal(t, 8, cfg.MaxThreads)
}

func TestLoad_MissingInputsFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".punp.yaml", `recursive: true`)

	_, err := projectconfig.Load(context.Background(), path)

	assert.Error(t, err)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".punp.toml", `inputs = ["docs"]`)

	_, err := projectconfig.Load(context.Background(), path)

	assert.Error(t, err)
}
