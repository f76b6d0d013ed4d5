package schemavault

import "errors"

// Common errors used throughout the schemavault packages.
var (
	// ErrUnsupportedDialect is returned when a dialect tag matches no
	// registered extractor or generation strategy.
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	// ErrConnectionFailed indicates a database connection could not be opened.
	ErrConnectionFailed = errors.New("failed to connect to database")
	// ErrQueryFailed indicates a catalog query failed against a live database.
	ErrQueryFailed = errors.New("catalog query failed")
	// ErrPersistenceFailed indicates writing snapshot records to the store failed.
	ErrPersistenceFailed = errors.New("failed to persist snapshot records")
	// ErrConfigValidation is returned when configuration validation fails.
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrDatasourceNotFound is returned when a named datasource is not configured.
	ErrDatasourceNotFound = errors.New("datasource is not configured")
)
