package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultCensusYear, cfg.Pipeline.Year)
	assert.Equal(t, DefaultAreaPrefix, cfg.Pipeline.AreaPrefix)
	assert.Equal(t, DefaultKeyColumn, cfg.Pipeline.KeyColumn)
	assert.Equal(t, DefaultBoundaryUnitColumn, cfg.Pipeline.BoundaryUnitColumn)
	assert.Len(t, cfg.Pipeline.Tables, 4)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yml")
	content := `
pipeline:
  year: 1991
  area_prefix: "08AA"
  tables:
    - name: sas02
      parts: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1991, cfg.Pipeline.Year)
	assert.Equal(t, "08AA", cfg.Pipeline.AreaPrefix)
	require.Len(t, cfg.Pipeline.Tables, 1)
	assert.Equal(t, 3, cfg.Pipeline.Tables[0].Parts)
	// Unset fields still fall back to defaults.
	assert.Equal(t, DefaultKeyColumn, cfg.Pipeline.KeyColumn)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  area_prefix: \"08AA\"\n"), 0644))

	t.Setenv("CENSUS_PIPELINE_AREA_PREFIX", "03BN")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "03BN", cfg.Pipeline.AreaPrefix)
}

func TestPathsResolvedAbsolute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yml")
	content := "paths:\n  base_dir: " + dir + "\n  raw_dir: data/raw\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.Paths.RawDir))
	assert.Equal(t, filepath.Join(dir, "data/raw"), cfg.Paths.RawDir)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: [not a mapping"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidTableSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yml")
	content := `
pipeline:
  tables:
    - name: sas02
      parts: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestTableByName(t *testing.T) {
	p := PipelineConfig{Tables: DefaultTables()}
	spec, ok := p.TableByName("sas07")
	require.True(t, ok)
	assert.Equal(t, "Employment", spec.Description)
	_, ok = p.TableByName("sas99")
	assert.False(t, ok)
}
