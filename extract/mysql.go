package extract

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/schemavault/schemavault"
)

// MySQLExtractor handles catalog extraction for the MySQL family
// (MySQL, MariaDB). Both speak the same information_schema vocabulary.
type MySQLExtractor struct {
	dialect schemavault.Dialect
}

func (e *MySQLExtractor) Dialect() schemavault.Dialect {
	return e.dialect
}

func (e *MySQLExtractor) DriverName() string {
	return "mysql"
}

// ConnectionString builds a go-sql-driver DSN from the datasource.
func (e *MySQLExtractor) ConnectionString(ds schemavault.Datasource) string {
	var sb strings.Builder
	if ds.Username != "" {
		sb.WriteString(ds.Username)
		if ds.Password != "" {
			sb.WriteString(":")
			sb.WriteString(ds.Password)
		}
		sb.WriteString("@")
	}
	sb.WriteString("tcp(")
	sb.WriteString(net.JoinHostPort(ds.Host, strconv.Itoa(ds.Port)))
	sb.WriteString(")/")
	sb.WriteString(ds.Database)
	sb.WriteString("?parseTime=true")
	if ds.ConnectTimeout > 0 {
		sb.WriteString("&timeout=")
		sb.WriteString(ds.ConnectTimeout.String())
	}
	return sb.String()
}

// DatabaseInfo looks up the database defaults. MySQL is not schema-based, so
// the schema list stays empty and table rows carry an empty schema name.
func (e *MySQLExtractor) DatabaseInfo(ctx context.Context, db *sql.DB, ds schemavault.Datasource, excl schemavault.ExclusionConfig) (DatabaseInfo, error) {
	const query = "SELECT DATABASE(), @@character_set_database, @@collation_database"

	var name, charset, collation string
	if err := db.QueryRowContext(ctx, query).Scan(&name, &charset, &collation); err != nil {
		return DatabaseInfo{}, fmt.Errorf("%w: %v (query=%q)", schemavault.ErrQueryFailed, err, query)
	}

	return DatabaseInfo{
		Name:      name,
		Charset:   charset,
		Collation: collation,
	}, nil
}

// TablesStructure lists base tables only with their storage statistics.
func (e *MySQLExtractor) TablesStructure(ctx context.Context, db *sql.DB, ds schemavault.Datasource, excl schemavault.ExclusionConfig) ([]TableRow, error) {
	const query = `
		SELECT
			TABLE_NAME,
			TABLE_TYPE,
			IFNULL(ENGINE, ''),
			IFNULL(TABLE_COLLATION, ''),
			IFNULL(ROW_FORMAT, ''),
			IFNULL(TABLE_ROWS, 0),
			IFNULL(AVG_ROW_LENGTH, 0),
			IFNULL(DATA_LENGTH, 0),
			IFNULL(INDEX_LENGTH, 0),
			IFNULL(AUTO_INCREMENT, 0),
			IFNULL(TABLE_COMMENT, '')
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	var tables []TableRow
	err := queryRows(ctx, db, query, nil, func(rows *sql.Rows) error {
		var t TableRow
		if err := rows.Scan(&t.Name, &t.Kind, &t.Engine, &t.Collation, &t.RowFormat,
			&t.Rows, &t.AvgRowLength, &t.DataLength, &t.IndexLength,
			&t.AutoIncrement, &t.Comment); err != nil {
			return err
		}
		t.Charset = charsetFromCollation(t.Collation)
		if !excl.ExcludesTable(t.Schema, t.Name) {
			tables = append(tables, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tables, nil
}

// TableColumns lists columns ordered by ordinal position. MySQL's COLUMN_TYPE
// already carries the full normalized type (e.g. varchar(255)).
func (e *MySQLExtractor) TableColumns(ctx context.Context, db *sql.DB, schema, table string) ([]ColumnRow, error) {
	const query = `
		SELECT
			ORDINAL_POSITION,
			COLUMN_NAME,
			COLUMN_DEFAULT,
			IS_NULLABLE,
			DATA_TYPE,
			COLUMN_TYPE,
			CHARACTER_MAXIMUM_LENGTH,
			NUMERIC_PRECISION,
			NUMERIC_SCALE,
			CHARACTER_SET_NAME,
			COLLATION_NAME,
			COLUMN_KEY,
			EXTRA,
			COLUMN_COMMENT
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	var columns []ColumnRow
	err := queryRows(ctx, db, query, []any{table}, func(rows *sql.Rows) error {
		var (
			c                            ColumnRow
			defaultValue                 sql.NullString
			isNullable                   string
			maxLength, precision, scale  sql.NullInt64
			charset, collation, key      sql.NullString
			extra, comment               sql.NullString
		)
		if err := rows.Scan(&c.OrdinalPosition, &c.Name, &defaultValue, &isNullable,
			&c.DataType, &c.ColumnType, &maxLength, &precision, &scale,
			&charset, &collation, &key, &extra, &comment); err != nil {
			return err
		}
		c.DefaultValue = stringPtr(defaultValue)
		c.Nullable = isNullable == "YES"
		c.MaxLength = int64Ptr(maxLength)
		c.Precision = int64Ptr(precision)
		c.Scale = int64Ptr(scale)
		c.Charset = nullableString(charset)
		c.Collation = nullableString(collation)
		c.Key = nullableString(key)
		c.Extra = nullableString(extra)
		c.Comment = nullableString(comment)
		columns = append(columns, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return columns, nil
}

// TableIndexes returns one row per (index, member column), ordered by index
// name then intra-index sequence. A composite index spans several rows.
func (e *MySQLExtractor) TableIndexes(ctx context.Context, db *sql.DB, schema, table string) ([]IndexColumnRow, error) {
	const query = `
		SELECT
			INDEX_NAME,
			IFNULL(INDEX_TYPE, ''),
			NON_UNIQUE,
			SEQ_IN_INDEX,
			COLUMN_NAME,
			SUB_PART,
			IFNULL(INDEX_COMMENT, '')
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`

	var result []IndexColumnRow
	err := queryRows(ctx, db, query, []any{table}, func(rows *sql.Rows) error {
		var (
			r         IndexColumnRow
			nonUnique int
			subPart   sql.NullInt64
		)
		if err := rows.Scan(&r.IndexName, &r.Type, &nonUnique, &r.SeqInIndex,
			&r.ColumnName, &subPart, &r.Comment); err != nil {
			return err
		}
		r.Unique = nonUnique == 0
		r.Primary = r.IndexName == "PRIMARY"
		r.SubPart = int64Ptr(subPart)
		result = append(result, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// charsetFromCollation derives the character set from a MySQL collation name
// (utf8mb4_general_ci belongs to utf8mb4). The catalog splits them across
// tables, the collation prefix is authoritative.
func charsetFromCollation(collation string) string {
	if collation == "" {
		return ""
	}
	if i := strings.Index(collation, "_"); i > 0 {
		return collation[:i]
	}
	return collation
}
