package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port      string `toml:"port"`
	APIPrefix string `toml:"api_prefix"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type BackendConfig struct {
	Provider  string   `toml:"provider"`
	Fixture   string   `toml:"fixture"`
	MaxLevel  int      `toml:"max_level"`
	Blacklist []string `toml:"blacklist"`
	PageSize  int      `toml:"page_size"`
}

type ComparisonConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MaxPathLength       int     `toml:"max_path_length"`
}

type TextConfig struct {
	StopwordsFile string `toml:"stopwords_file"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type TracingConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	// Endpoint is an OTLP/HTTP collector; spans go to stdout when empty.
	Endpoint    string  `toml:"endpoint"`
	Insecure    bool    `toml:"insecure"`
	SampleRatio float64 `toml:"sample_ratio"`
}

type Config struct {
	Env        string           `toml:"env"`
	Server     ServerConfig     `toml:"server"`
	Neo4j      Neo4jConfig      `toml:"neo4j"`
	Backend    BackendConfig    `toml:"backend"`
	Comparison ComparisonConfig `toml:"comparison"`
	Text       TextConfig       `toml:"text"`
	Database   DatabaseConfig   `toml:"database"`
	Tracing    TracingConfig    `toml:"tracing"`
}

func Default() *Config {
	return &Config{
		Env: "dev",
		Server: ServerConfig{
			Port: "8080",
		},
		Neo4j: Neo4jConfig{
			URI:  "bolt://localhost:7687",
			User: "neo4j",
		},
		Backend: BackendConfig{
			Provider:  "neo4j",
			MaxLevel:  -1,
			Blacklist: []string{"ResearchField"},
			PageSize:  300,
		},
		Comparison: ComparisonConfig{
			SimilarityThreshold: 0.85,
			MaxPathLength:       5,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "simcomp.db",
		},
		Tracing: TracingConfig{
			ServiceName: "simcomp",
			SampleRatio: 0.1,
		},
	}
}

// Load reads the TOML file at path on top of Default. A missing file is not
// an error; the defaults are returned as they are.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with the environment.
func (c *Config) ApplyEnv() {
	override := func(dst *string, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}

	override(&c.Env, "SIMCOMP_ENV")
	override(&c.Server.Port, "PORT")
	override(&c.Server.APIPrefix, "API_PREFIX")
	override(&c.Neo4j.URI, "NEO4J_URI")
	override(&c.Neo4j.User, "NEO4J_USER")
	override(&c.Neo4j.Password, "NEO4J_PASSWORD")
	override(&c.Neo4j.Database, "NEO4J_DATABASE")
	override(&c.Backend.Provider, "BACKEND_PROVIDER")
	override(&c.Backend.Fixture, "BACKEND_FIXTURE")
	override(&c.Database.Driver, "DATABASE_DRIVER")
	override(&c.Database.DSN, "DATABASE_DSN")
	override(&c.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	if v := strings.TrimSpace(strings.ToLower(os.Getenv("OTEL_ENABLED"))); v != "" {
		c.Tracing.Enabled = v == "1" || v == "true" || v == "yes" || v == "on"
	}
}

func (c *Config) IsTest() bool {
	return strings.EqualFold(c.Env, "test")
}
