package config

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/relgraph/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateStore()...)
	if c.Cache.Enabled {
		errors = append(errors, c.validateCache()...)
	}
	errors = append(errors, c.validateIngest()...)
	errors = append(errors, c.validateQuery()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateStore() ValidationErrors {
	var errors ValidationErrors
	db := &c.Store

	switch db.Driver {
	case "memory":
		return nil
	case "mysql", "":
	default:
		return ValidationErrors{{
			Field:   "store.driver",
			Message: "driver must be 'mysql' or 'memory'",
		}}
	}

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "store.host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "store.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "store.user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "store.database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "store.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "store.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "store.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	for field, table := range map[string]string{
		"store.entities_table":  db.EntitiesTable,
		"store.relations_table": db.RelationsTable,
	} {
		if !sqlutil.IsValidIdentifier(table) {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q is not a valid table name", table),
			})
		}
	}

	return errors
}

func (c *Config) validateCache() ValidationErrors {
	var errors ValidationErrors

	if c.Cache.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "cache.addr",
			Message: "addr is required when cache is enabled",
		})
	}

	if c.Cache.DB < 0 {
		errors = append(errors, ValidationError{
			Field:   "cache.db",
			Message: "db cannot be negative",
		})
	}

	if c.Cache.TTLSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "cache.ttl_seconds",
			Message: "ttl_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateIngest() ValidationErrors {
	var errors ValidationErrors

	if c.Ingest.Workers <= 0 {
		errors = append(errors, ValidationError{
			Field:   "ingest.workers",
			Message: "workers must be positive",
		})
	}

	if c.Ingest.BatchSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "ingest.batch_size",
			Message: "batch_size must be positive",
		})
	}

	if c.Ingest.QueueSize < 0 {
		errors = append(errors, ValidationError{
			Field:   "ingest.queue_size",
			Message: "queue_size cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateQuery() ValidationErrors {
	var errors ValidationErrors

	if c.Query.MaxDegree < 0 {
		errors = append(errors, ValidationError{
			Field:   "query.max_degree",
			Message: "max_degree cannot be negative",
		})
	}

	if c.Query.MaxNodes < 0 {
		errors = append(errors, ValidationError{
			Field:   "query.max_nodes",
			Message: "max_nodes cannot be negative",
		})
	}

	if c.Query.LinkRatio < 0 {
		errors = append(errors, ValidationError{
			Field:   "query.link_ratio",
			Message: "link_ratio cannot be negative",
		})
	}

	if c.Query.MaxNodes == 0 && c.Query.LinkRatio == 0 {
		errors = append(errors, ValidationError{
			Field:   "query",
			Message: "one of max_nodes or link_ratio must be set",
		})
	}

	if len(c.Query.Roles) == 0 {
		errors = append(errors, ValidationError{
			Field:   "query.roles",
			Message: "at least one role must be listed",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
