// Package config provides configuration structures and loading for relgraph.
package config

// Config represents the complete application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy" mapstructure:"taxonomy"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Query    QueryConfig    `yaml:"query" mapstructure:"query"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// StoreConfig selects and configures the relation store.
type StoreConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // mysql or memory
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
	EntitiesTable      string `yaml:"entities_table" mapstructure:"entities_table"`
	RelationsTable     string `yaml:"relations_table" mapstructure:"relations_table"`
}

// CacheConfig configures the optional Redis edge cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr       string `yaml:"addr" mapstructure:"addr"`
	Password   string `yaml:"password" mapstructure:"password"`
	DB         int    `yaml:"db" mapstructure:"db"`
	Prefix     string `yaml:"prefix" mapstructure:"prefix"`
	TTLSeconds int    `yaml:"ttl_seconds" mapstructure:"ttl_seconds"`
}

// TaxonomyConfig points at the role taxonomy file. An empty path selects the
// built-in taxonomy.
type TaxonomyConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// IngestConfig represents bulk loading settings.
type IngestConfig struct {
	Workers            int `yaml:"workers" mapstructure:"workers"`
	BatchSize          int `yaml:"batch_size" mapstructure:"batch_size"`
	QueueSize          int `yaml:"queue_size" mapstructure:"queue_size"`
	LockTimeoutSeconds int `yaml:"lock_timeout_seconds" mapstructure:"lock_timeout_seconds"`
}

// QueryConfig holds defaults for graph queries. MaxNodes and LinkRatio are
// mutually exclusive; LinkRatio wins when both are set.
type QueryConfig struct {
	MaxDegree int      `yaml:"max_degree" mapstructure:"max_degree"`
	MaxNodes  int      `yaml:"max_nodes" mapstructure:"max_nodes"`
	LinkRatio float64  `yaml:"link_ratio" mapstructure:"link_ratio"`
	Roles     []string `yaml:"roles" mapstructure:"roles"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:             "mysql",
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			EntitiesTable:      "entities",
			RelationsTable:     "relations",
		},
		Cache: CacheConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			Prefix:     "relgraph:",
			TTLSeconds: 3600,
		},
		Ingest: IngestConfig{
			Workers:            4,
			BatchSize:          500,
			QueueSize:          64,
			LockTimeoutSeconds: 1,
		},
		Query: QueryConfig{
			MaxDegree: 2,
			MaxNodes:  100,
			Roles:     []string{"Alias", "Member Of", "Sublabel Of"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}
