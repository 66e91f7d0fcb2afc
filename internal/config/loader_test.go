package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
store:
  driver: mysql
  host: localhost
  port: 3306
  user: testuser
  password: testpass
  database: discogs
  tls: disable
  max_connections: 5
  relations_table: relation_edges

cache:
  enabled: true
  addr: redis:6379
  ttl_seconds: 60

taxonomy:
  path: /etc/relgraph/roles.yaml

ingest:
  workers: 8
  batch_size: 250

query:
  max_degree: 3
  max_nodes: 50
  roles:
    - Alias
    - Member Of

logging:
  level: debug
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Store.Host != "localhost" {
		t.Errorf("expected store host 'localhost', got %s", cfg.Store.Host)
	}
	if cfg.Store.MaxConnections != 5 {
		t.Errorf("expected store max_connections 5, got %d", cfg.Store.MaxConnections)
	}
	if cfg.Store.RelationsTable != "relation_edges" {
		t.Errorf("expected relations_table 'relation_edges', got %s", cfg.Store.RelationsTable)
	}
	// Unset keys keep their defaults
	if cfg.Store.EntitiesTable != "entities" {
		t.Errorf("expected default entities_table, got %s", cfg.Store.EntitiesTable)
	}

	if !cfg.Cache.Enabled || cfg.Cache.Addr != "redis:6379" || cfg.Cache.TTLSeconds != 60 {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}

	if cfg.Taxonomy.Path != "/etc/relgraph/roles.yaml" {
		t.Errorf("expected taxonomy path, got %s", cfg.Taxonomy.Path)
	}

	if cfg.Ingest.Workers != 8 || cfg.Ingest.BatchSize != 250 {
		t.Errorf("unexpected ingest config: %+v", cfg.Ingest)
	}
	if cfg.Ingest.QueueSize != 64 {
		t.Errorf("expected default queue_size 64, got %d", cfg.Ingest.QueueSize)
	}

	if cfg.Query.MaxDegree != 3 || cfg.Query.MaxNodes != 50 {
		t.Errorf("unexpected query config: %+v", cfg.Query)
	}
	if len(cfg.Query.Roles) != 2 || cfg.Query.Roles[1] != "Member Of" {
		t.Errorf("unexpected query roles: %v", cfg.Query.Roles)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "env-host")
	t.Setenv("TEST_DB_USER", "env-user")
	t.Setenv("TEST_DB_PASS", "env-pass")
	t.Setenv("TEST_REDIS", "cache:6380")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-env.yaml")

	configContent := `
store:
  host: ${TEST_DB_HOST}
  port: 3306
  user: $TEST_DB_USER
  password: ${TEST_DB_PASS}
  database: ${UNSET_RELGRAPH_VAR}
cache:
  addr: ${TEST_REDIS}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Store.Host != "env-host" {
		t.Errorf("expected host from env, got %s", cfg.Store.Host)
	}
	if cfg.Store.User != "env-user" {
		t.Errorf("expected user from env, got %s", cfg.Store.User)
	}
	if cfg.Store.Password != "env-pass" {
		t.Errorf("expected password from env, got %s", cfg.Store.Password)
	}
	if cfg.Store.Database != "${UNSET_RELGRAPH_VAR}" {
		t.Errorf("expected unresolved variable to be kept, got %s", cfg.Store.Database)
	}
	if cfg.Cache.Addr != "cache:6380" {
		t.Errorf("expected cache addr from env, got %s", cfg.Cache.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("RELGRAPH_X", "value")

	tests := map[string]string{
		"plain":                "plain",
		"${RELGRAPH_X}":        "value",
		"$RELGRAPH_X/suffix":   "value/suffix",
		"${RELGRAPH_MISSING}":  "${RELGRAPH_MISSING}",
		"pre-${RELGRAPH_X}-po": "pre-value-po",
	}

	for in, want := range tests {
		if got := expandEnvVar(in); got != want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", in, got, want)
		}
	}
}
