package schemavault

import (
	"fmt"
	"strings"
)

// Dialect represents supported database dialects.
// This type is shared across all packages.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectMariaDB  Dialect = "mariadb"
	DialectPostgres Dialect = "postgres"
	DialectKingbase Dialect = "kingbase"
)

// ParseDialect normalizes a dialect tag. Unknown or malformed tags fail with
// ErrUnsupportedDialect.
func ParseDialect(tag string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "mysql":
		return DialectMySQL, nil
	case "mariadb":
		return DialectMariaDB, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "kingbase", "kingbasees":
		return DialectKingbase, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDialect, tag)
	}
}

// IsMySQLFamily reports whether the dialect speaks the MySQL catalog and DDL
// vocabulary.
func (d Dialect) IsMySQLFamily() bool {
	return d == DialectMySQL || d == DialectMariaDB
}

// IsPostgresFamily reports whether the dialect speaks the PostgreSQL catalog
// and DDL vocabulary. Kingbase is a PostgreSQL-compatible variant.
func (d Dialect) IsPostgresFamily() bool {
	return d == DialectPostgres || d == DialectKingbase
}

func (d Dialect) String() string {
	return string(d)
}
