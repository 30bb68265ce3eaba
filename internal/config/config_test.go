package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 0.85, cfg.Comparison.SimilarityThreshold)
	assert.Equal(t, 5, cfg.Comparison.MaxPathLength)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
env = "test"

[backend]
provider = "fixture"
fixture = "testdata/graph.json"

[comparison]
similarity_threshold = 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsTest())
	assert.Equal(t, "fixture", cfg.Backend.Provider)
	assert.Equal(t, "testdata/graph.json", cfg.Backend.Fixture)
	assert.Equal(t, 0.9, cfg.Comparison.SimilarityThreshold)
	// untouched keys keep their defaults
	assert.Equal(t, 5, cfg.Comparison.MaxPathLength)
	assert.Equal(t, []string{"ResearchField"}, cfg.Backend.Blacklist)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("env = ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NEO4J_URI", "bolt://graph:7687")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
}

func TestApplyEnv_Tracing(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Tracing.Enabled)

	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	cfg.ApplyEnv()

	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "collector:4318", cfg.Tracing.Endpoint)

	t.Setenv("OTEL_ENABLED", "off")
	cfg.ApplyEnv()
	assert.False(t, cfg.Tracing.Enabled)
}
