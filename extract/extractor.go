package extract

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/schemavault/schemavault"
)

// Extractor queries a live database's catalog and returns raw structural
// rows. One implementation exists per dialect family; only the extractor and
// its catalog SQL differ, the returned shape is dialect-neutral.
type Extractor interface {
	Dialect() schemavault.Dialect
	DriverName() string
	ConnectionString(ds schemavault.Datasource) string
	DatabaseInfo(ctx context.Context, db *sql.DB, ds schemavault.Datasource, excl schemavault.ExclusionConfig) (DatabaseInfo, error)
	TablesStructure(ctx context.Context, db *sql.DB, ds schemavault.Datasource, excl schemavault.ExclusionConfig) ([]TableRow, error)
	TableColumns(ctx context.Context, db *sql.DB, schema, table string) ([]ColumnRow, error)
	TableIndexes(ctx context.Context, db *sql.DB, schema, table string) ([]IndexColumnRow, error)
}

// registry maps dialect tags to extractors. It is built once at package
// initialization and treated as read-only thereafter.
var registry = map[schemavault.Dialect]Extractor{
	schemavault.DialectMySQL:    &MySQLExtractor{dialect: schemavault.DialectMySQL},
	schemavault.DialectMariaDB:  &MySQLExtractor{dialect: schemavault.DialectMariaDB},
	schemavault.DialectPostgres: &PostgresExtractor{dialect: schemavault.DialectPostgres},
	schemavault.DialectKingbase: &PostgresExtractor{dialect: schemavault.DialectKingbase},
}

// New resolves the extractor for a dialect. It fails with
// ErrUnsupportedDialect when the tag matches no registered extractor.
func New(dialect schemavault.Dialect) (Extractor, error) {
	e, ok := registry[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %q", schemavault.ErrUnsupportedDialect, dialect)
	}
	return e, nil
}

// queryRows runs one catalog query and folds each result row through scan.
// Failures wrap ErrQueryFailed and carry the statement and parameters for
// diagnosis.
func queryRows(ctx context.Context, db *sql.DB, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v (query=%q args=%v)", schemavault.ErrQueryFailed, err, query, args)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%w: %v (query=%q args=%v)", schemavault.ErrQueryFailed, err, query, args)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v (query=%q args=%v)", schemavault.ErrQueryFailed, err, query, args)
	}

	return nil
}

func nullableString(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}

func nullableInt(v sql.NullInt64) int64 {
	if v.Valid {
		return v.Int64
	}
	return 0
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
