package extract

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/schemavault/schemavault"
)

// PostgresExtractor handles catalog extraction for the PostgreSQL family.
// Kingbase reuses it wholesale; the variant only differs in its excluded
// system schemas, which arrive through the exclusion configuration.
type PostgresExtractor struct {
	dialect schemavault.Dialect
}

func (e *PostgresExtractor) Dialect() schemavault.Dialect {
	return e.dialect
}

func (e *PostgresExtractor) DriverName() string {
	return "pgx"
}

// ConnectionString builds a standard PostgreSQL connection URL.
func (e *PostgresExtractor) ConnectionString(ds schemavault.Datasource) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(ds.Host, strconv.Itoa(ds.Port)),
		Path:   "/" + ds.Database,
	}
	if ds.Username != "" {
		if ds.Password != "" {
			u.User = url.UserPassword(ds.Username, ds.Password)
		} else {
			u.User = url.User(ds.Username)
		}
	}

	query := url.Values{"sslmode": []string{"disable"}}
	if ds.ConnectTimeout > 0 {
		seconds := int(ds.ConnectTimeout.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		query.Set("connect_timeout", strconv.Itoa(seconds))
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// DatabaseInfo looks up the database defaults and the user-visible schemas.
// System schemas (pg_catalog, pg_toast, information_schema, and for kingbase
// sys/sysmac) arrive excluded through the exclusion configuration.
func (e *PostgresExtractor) DatabaseInfo(ctx context.Context, db *sql.DB, ds schemavault.Datasource, excl schemavault.ExclusionConfig) (DatabaseInfo, error) {
	const infoQuery = `
		SELECT current_database(), pg_encoding_to_char(encoding), datcollate
		FROM pg_database
		WHERE datname = current_database()`

	var info DatabaseInfo
	if err := db.QueryRowContext(ctx, infoQuery).Scan(&info.Name, &info.Charset, &info.Collation); err != nil {
		return DatabaseInfo{}, fmt.Errorf("%w: %v (query=%q)", schemavault.ErrQueryFailed, err, infoQuery)
	}

	const schemasQuery = `
		SELECT schema_name
		FROM information_schema.schemata
		ORDER BY schema_name`

	err := queryRows(ctx, db, schemasQuery, nil, func(rows *sql.Rows) error {
		var schema string
		if err := rows.Scan(&schema); err != nil {
			return err
		}
		if !excl.ExcludesSchema(schema) && !strings.HasPrefix(schema, "pg_") {
			info.Schemas = append(info.Schemas, schema)
		}
		return nil
	})
	if err != nil {
		return DatabaseInfo{}, err
	}

	return info, nil
}

// TablesStructure lists base tables of every included schema with their
// storage statistics. Row counts come from the planner estimate; exact counts
// would require a full scan per table.
func (e *PostgresExtractor) TablesStructure(ctx context.Context, db *sql.DB, ds schemavault.Datasource, excl schemavault.ExclusionConfig) ([]TableRow, error) {
	info, err := e.DatabaseInfo(ctx, db, ds, excl)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT
			c.relname,
			COALESCE(obj_description(c.oid, 'pg_class'), ''),
			GREATEST(c.reltuples::bigint, 0),
			pg_table_size(c.oid),
			pg_indexes_size(c.oid)
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1
		  AND c.relkind = 'r'
		ORDER BY c.relname`

	var tables []TableRow
	for _, schema := range info.Schemas {
		err := queryRows(ctx, db, query, []any{schema}, func(rows *sql.Rows) error {
			var t TableRow
			if err := rows.Scan(&t.Name, &t.Comment, &t.Rows, &t.DataLength, &t.IndexLength); err != nil {
				return err
			}
			t.Schema = schema
			t.Kind = "BASE TABLE"
			t.Charset = info.Charset
			t.Collation = info.Collation
			if t.Rows > 0 {
				t.AvgRowLength = t.DataLength / t.Rows
			}
			if !excl.ExcludesTable(t.Schema, t.Name) {
				tables = append(tables, t)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return tables, nil
}

// TableColumns lists columns ordered by ordinal position. The raw type and
// the length/precision/scale live in separate catalog fields, so the full
// column type is merged here (character varying + 255 becomes varchar(255)).
// postgresColumnsQuery resolves the table's pg_class row through its
// namespace and relkind. pg_class holds every relation in every schema, so
// an unconstrained relname join would match same-named relations elsewhere
// and duplicate each column row.
const postgresColumnsQuery = `
	SELECT
		c.ordinal_position,
		c.column_name,
		c.column_default,
		c.is_nullable,
		c.data_type,
		c.udt_name,
		c.character_maximum_length,
		c.numeric_precision,
		c.numeric_scale,
		COALESCE(c.collation_name, ''),
		COALESCE(col_description(pc.oid, c.ordinal_position), '')
	FROM information_schema.columns c
	LEFT JOIN pg_namespace pn ON pn.nspname = c.table_schema
	LEFT JOIN pg_class pc ON pc.relname = c.table_name
		AND pc.relnamespace = pn.oid
		AND pc.relkind = 'r'
	WHERE c.table_schema = $1
	  AND c.table_name = $2
	ORDER BY c.ordinal_position`

func (e *PostgresExtractor) TableColumns(ctx context.Context, db *sql.DB, schema, table string) ([]ColumnRow, error) {
	var columns []ColumnRow
	err := queryRows(ctx, db, postgresColumnsQuery, []any{schema, table}, func(rows *sql.Rows) error {
		var (
			c                           ColumnRow
			defaultValue                sql.NullString
			isNullable, udtName         string
			maxLength, precision, scale sql.NullInt64
		)
		if err := rows.Scan(&c.OrdinalPosition, &c.Name, &defaultValue, &isNullable,
			&c.DataType, &udtName, &maxLength, &precision, &scale,
			&c.Collation, &c.Comment); err != nil {
			return err
		}
		c.Nullable = isNullable == "YES"
		c.MaxLength = int64Ptr(maxLength)
		c.Precision = int64Ptr(precision)
		c.Scale = int64Ptr(scale)
		c.DefaultValue = stringPtr(defaultValue)

		if c.DefaultValue != nil && strings.HasPrefix(*c.DefaultValue, "nextval(") {
			// Sequence-backed columns are the postgres spelling of
			// auto-increment.
			c.Extra = "auto_increment"
			c.DefaultValue = nil
		} else if c.DefaultValue != nil {
			normalized := normalizePostgresDefault(*c.DefaultValue)
			c.DefaultValue = &normalized
		}

		c.ColumnType = fullColumnType(c.DataType, udtName, c.MaxLength, c.Precision, c.Scale)
		columns = append(columns, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	primary, err := e.primaryKeyColumns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}
	for i := range columns {
		if _, ok := primary[columns[i].Name]; ok {
			columns[i].Key = schemavault.KeyPrimary
		}
	}

	return columns, nil
}

// TableIndexes returns one row per (index, member column) with the
// intra-index sequence preserved, mirroring the flat shape the MySQL catalog
// reports so downstream grouping is dialect-neutral.
func (e *PostgresExtractor) TableIndexes(ctx context.Context, db *sql.DB, schema, table string) ([]IndexColumnRow, error) {
	const query = `
		SELECT
			i.relname,
			am.amname,
			ix.indisunique,
			ix.indisprimary,
			a.attname,
			k.seq,
			COALESCE(obj_description(i.oid, 'pg_class'), '')
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_am am ON am.oid = i.relam
		JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, seq) ON true
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1
		  AND t.relname = $2
		ORDER BY i.relname, k.seq`

	var result []IndexColumnRow
	err := queryRows(ctx, db, query, []any{schema, table}, func(rows *sql.Rows) error {
		var (
			r   IndexColumnRow
			seq int64
		)
		if err := rows.Scan(&r.IndexName, &r.Type, &r.Unique, &r.Primary,
			&r.ColumnName, &seq, &r.Comment); err != nil {
			return err
		}
		r.SeqInIndex = int(seq)
		r.Type = strings.ToUpper(r.Type)
		result = append(result, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (e *PostgresExtractor) primaryKeyColumns(ctx context.Context, db *sql.DB, schema, table string) (map[string]struct{}, error) {
	const query = `
		SELECT a.attname
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1
		  AND t.relname = $2
		  AND ix.indisprimary`

	primary := map[string]struct{}{}
	err := queryRows(ctx, db, query, []any{schema, table}, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		primary[name] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return primary, nil
}

// fullColumnType merges the raw catalog type with the split length,
// precision, and scale fields into one normalized full type string.
func fullColumnType(dataType, udtName string, maxLength, precision, scale *int64) string {
	switch strings.ToLower(dataType) {
	case "character varying":
		if maxLength != nil {
			return fmt.Sprintf("varchar(%d)", *maxLength)
		}
		return "varchar"
	case "character":
		if maxLength != nil {
			return fmt.Sprintf("char(%d)", *maxLength)
		}
		return "char"
	case "numeric", "decimal":
		if precision != nil && scale != nil && *scale > 0 {
			return fmt.Sprintf("numeric(%d,%d)", *precision, *scale)
		}
		if precision != nil {
			return fmt.Sprintf("numeric(%d)", *precision)
		}
		return "numeric"
	case "timestamp without time zone":
		return "timestamp"
	case "timestamp with time zone":
		return "timestamptz"
	case "time without time zone":
		return "time"
	case "time with time zone":
		return "timetz"
	case "double precision":
		return "double precision"
	case "user-defined", "array":
		return strings.TrimPrefix(udtName, "_")
	default:
		return strings.ToLower(dataType)
	}
}

// normalizePostgresDefault strips the type cast the catalog appends to
// literal defaults ('x'::character varying stays 'x').
func normalizePostgresDefault(value string) string {
	trimmed := strings.TrimSpace(value)
	if i := strings.Index(trimmed, "::"); i >= 0 {
		literal := strings.TrimSpace(trimmed[:i])
		if strings.HasPrefix(literal, "'") && strings.HasSuffix(literal, "'") && len(literal) >= 2 {
			return literal[1 : len(literal)-1]
		}
		return literal
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") && len(trimmed) >= 2 {
		return trimmed[1 : len(trimmed)-1]
	}
	return trimmed
}
