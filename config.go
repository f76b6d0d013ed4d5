package schemavault

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Config represents the schemavault configuration loaded from
// schemavault.yaml.
type Config struct {
	Store       StoreConfig                 `yaml:"store"`
	Logging     LoggingConfig               `yaml:"logging"`
	Datasources map[string]DatasourceConfig `yaml:"datasources"`
	Exclusions  map[string]ExclusionConfig  `yaml:"exclusions"` // keyed by dialect tag
	Connect     ConnectConfig               `yaml:"connect"`
}

// StoreConfig locates the record store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ConnectConfig holds connection tuning shared by all datasources.
type ConnectConfig struct {
	Timeout int `yaml:"timeout"` // seconds; 0 means driver default
}

// DatasourceConfig is one named database connection.
type DatasourceConfig struct {
	Dialect  string `yaml:"dialect"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ExclusionConfig lists schemas and tables to skip during extraction.
// Tables may be bare names or schema-qualified ("schema.table"); a table can
// be excluded by name inside an otherwise-included schema.
type ExclusionConfig struct {
	Schemas []string `yaml:"schemas"`
	Tables  []string `yaml:"tables"`
}

// DefaultConfigFile is the config file name looked up in the working
// directory when no explicit path is given.
const DefaultConfigFile = "schemavault.yaml"

// DefaultConfig returns a configuration with built-in defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Store:       StoreConfig{Path: "schemavault.db"},
		Logging:     LoggingConfig{Level: "info"},
		Datasources: map[string]DatasourceConfig{},
		Exclusions:  map[string]ExclusionConfig{},
	}
}

// LoadConfig reads the YAML configuration from path. A missing file yields
// the defaults rather than an error so the CLI works out of the box.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks dialect tags and store settings.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store path must not be empty", ErrConfigValidation)
	}

	for name, ds := range c.Datasources {
		if _, err := ParseDialect(ds.Dialect); err != nil {
			return fmt.Errorf("%w: datasource %q: %w", ErrConfigValidation, name, err)
		}
	}

	for tag := range c.Exclusions {
		if _, err := ParseDialect(tag); err != nil {
			return fmt.Errorf("%w: exclusions: %w", ErrConfigValidation, err)
		}
	}

	return nil
}

// Datasource resolves a configured datasource by name.
func (c *Config) Datasource(name string) (Datasource, error) {
	dc, ok := c.Datasources[name]
	if !ok {
		return Datasource{}, fmt.Errorf("%w: %q", ErrDatasourceNotFound, name)
	}

	dialect, err := ParseDialect(dc.Dialect)
	if err != nil {
		return Datasource{}, err
	}

	return Datasource{
		Name:           name,
		Dialect:        dialect,
		Host:           dc.Host,
		Port:           dc.Port,
		Database:       dc.Database,
		Username:       dc.Username,
		Password:       dc.Password,
		ConnectTimeout: time.Duration(c.Connect.Timeout) * time.Second,
	}, nil
}

// ExclusionsFor merges the dialect's built-in system exclusions with the
// configured ones. The result is what extractors apply both when listing
// schemas and when listing tables.
func (c *Config) ExclusionsFor(dialect Dialect) ExclusionConfig {
	merged := ExclusionConfig{
		Schemas: append([]string(nil), DefaultExcludedSchemas(dialect)...),
	}

	if configured, ok := c.Exclusions[dialect.String()]; ok {
		merged.Schemas = append(merged.Schemas, configured.Schemas...)
		merged.Tables = append(merged.Tables, configured.Tables...)
	}

	return merged
}

// DefaultExcludedSchemas lists the system schemas never captured for a
// dialect. Kingbase carries the vendor-internal sys/sysmac schemas on top of
// the PostgreSQL set.
func DefaultExcludedSchemas(dialect Dialect) []string {
	switch dialect {
	case DialectMySQL, DialectMariaDB:
		return []string{"information_schema", "mysql", "performance_schema", "sys"}
	case DialectPostgres:
		return []string{"information_schema", "pg_catalog", "pg_toast"}
	case DialectKingbase:
		return []string{"information_schema", "pg_catalog", "pg_toast", "sys", "sysmac"}
	default:
		return nil
	}
}

// ExcludesSchema reports whether the schema is excluded.
func (e ExclusionConfig) ExcludesSchema(schema string) bool {
	for _, excluded := range e.Schemas {
		if strings.EqualFold(schema, excluded) {
			return true
		}
	}
	return false
}

// ExcludesTable reports whether the table is excluded, either by bare name or
// by its schema-qualified name.
func (e ExclusionConfig) ExcludesTable(schema, table string) bool {
	qualified := table
	if schema != "" {
		qualified = schema + "." + table
	}
	for _, excluded := range e.Tables {
		if strings.EqualFold(table, excluded) || strings.EqualFold(qualified, excluded) {
			return true
		}
	}
	return false
}
