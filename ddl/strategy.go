// Package ddl renders captured database structures back into executable
// DDL text. One Strategy exists per dialect; all of them are pure text
// transformations over already-validated structures and never touch the
// network.
package ddl

import (
	"fmt"
	"strings"

	"github.com/schemavault/schemavault"
)

// Strategy renders persisted structures into dialect-correct DDL text.
type Strategy interface {
	Dialect() schemavault.Dialect

	// CreateTableSQL emits the full creation script for one table: the
	// CREATE TABLE body with its columns in ordinal order, plus whatever
	// trailing statements the dialect needs (comments, indexes).
	CreateTableSQL(table schemavault.Table, columns []schemavault.Column, indexes []schemavault.Index) string

	// DropTableSQL emits a guarded drop statement for one table.
	DropTableSQL(table schemavault.Table) string

	// AlterTableSQL renders a table diff as one statement per change.
	// Primary-key index changes are skipped; they are only expressible
	// at table-creation time.
	AlterTableSQL(table schemavault.Table, diff schemavault.TableDiff) []string

	// FormatColumnType maps a captured column to the dialect's type
	// vocabulary. The mapping is total: an unmapped raw type falls back
	// to uppercasing, it never fails.
	FormatColumnType(col schemavault.Column) string

	// FormatIdentifier wraps a bare name in the dialect's quoting
	// character exactly once. Already-quoted names and names carrying
	// stray bracket characters are normalized, not compounded.
	FormatIdentifier(name string) string

	// IndexDefinition renders one index as the dialect's fragment or
	// statement form.
	IndexDefinition(table schemavault.Table, index schemavault.Index) string
}

var registry = map[schemavault.Dialect]Strategy{
	schemavault.DialectMySQL:    &MySQLStrategy{dialect: schemavault.DialectMySQL},
	schemavault.DialectMariaDB:  &MySQLStrategy{dialect: schemavault.DialectMariaDB},
	schemavault.DialectPostgres: &PostgresStrategy{dialect: schemavault.DialectPostgres},
	schemavault.DialectKingbase: &KingbaseStrategy{PostgresStrategy{dialect: schemavault.DialectKingbase}},
}

// New resolves a dialect to its registered Strategy. The registry is built
// once at init and read-only thereafter.
func New(dialect schemavault.Dialect) (Strategy, error) {
	s, ok := registry[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: no SQL strategy for %q", schemavault.ErrUnsupportedDialect, dialect)
	}
	return s, nil
}

// Script renders the full DDL of a captured structure, one table after
// another in the stored order. When withDrop is set, each table is preceded
// by its drop statement unless the dialect's creation script already
// carries one.
func Script(structure *schemavault.DatabaseStructure, dialect schemavault.Dialect, withDrop bool) (string, error) {
	strategy, err := New(dialect)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, ts := range structure.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		create := strategy.CreateTableSQL(ts.Table, ts.Columns, ts.Indexes)
		if withDrop && !strings.HasPrefix(create, "DROP TABLE") {
			b.WriteString(strategy.DropTableSQL(ts.Table))
			b.WriteString("\n")
		}
		b.WriteString(create)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// splitTypeArgs breaks a raw type string into its base keyword, the
// parenthesized argument list, and any trailing modifier, e.g.
// "decimal(10,2) unsigned" -> ("decimal", "10,2", " unsigned").
func splitTypeArgs(raw string) (base, args, suffix string) {
	open := strings.IndexByte(raw, '(')
	if open < 0 {
		return raw, "", ""
	}
	closing := strings.LastIndexByte(raw, ')')
	if closing < open {
		return raw, "", ""
	}
	return raw[:open], raw[open+1 : closing], raw[closing+1:]
}

func isAutoIncrement(col schemavault.Column) bool {
	return strings.Contains(strings.ToLower(col.Extra), "auto_increment")
}

// primaryKeyColumns resolves the table's primary-key member columns: a
// primary-flagged index wins, otherwise any column whose key role marks it
// primary, in ordinal order.
func primaryKeyColumns(columns []schemavault.Column, indexes []schemavault.Index) []string {
	for _, idx := range indexes {
		if idx.Primary || idx.Name == "PRIMARY" {
			return idx.Columns
		}
	}
	var names []string
	for _, col := range columns {
		if col.Key == schemavault.KeyPrimary {
			names = append(names, col.Name)
		}
	}
	return names
}

func isPrimaryIndex(idx schemavault.Index) bool {
	return idx.Primary || idx.Name == "PRIMARY"
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
