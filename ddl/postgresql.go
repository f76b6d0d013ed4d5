package ddl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schemavault/schemavault"
)

// PostgresStrategy renders DDL for the PostgreSQL family. The primary key
// is a trailing named constraint inside the CREATE TABLE body; comments and
// secondary indexes are separate statements after it.
type PostgresStrategy struct {
	dialect schemavault.Dialect
}

func (s *PostgresStrategy) Dialect() schemavault.Dialect { return s.dialect }

func (s *PostgresStrategy) FormatIdentifier(name string) string {
	return formatIdentifier(name, `"`)
}

// FormatColumnType maps a captured type, possibly from a MySQL-family
// capture, into the PostgreSQL vocabulary. Auto-increment integers become
// the serial pseudo-types. Unmapped types pass through uppercased.
func (s *PostgresStrategy) FormatColumnType(col schemavault.Column) string {
	raw := col.DataType
	if raw == "" {
		raw = col.ColumnType
	}
	base, args, _ := splitTypeArgs(strings.ToLower(strings.TrimSpace(raw)))
	base = strings.TrimSpace(base)
	if args == "" {
		// Length and precision may only be present in the normalized
		// full type.
		_, args, _ = splitTypeArgs(col.ColumnType)
	}

	if isAutoIncrement(col) {
		switch base {
		case "bigint", "int8":
			return "BIGSERIAL"
		case "smallint", "int2":
			return "SMALLSERIAL"
		default:
			return "SERIAL"
		}
	}

	switch base {
	case "varchar", "character varying":
		if n := lengthArg(args, col.MaxLength); n != "" {
			return "CHARACTER VARYING(" + n + ")"
		}
		return "CHARACTER VARYING"
	case "char", "character":
		if n := lengthArg(args, col.MaxLength); n != "" {
			return "CHARACTER(" + n + ")"
		}
		return "CHARACTER"
	case "tinyint":
		if args == "1" {
			return "BOOLEAN"
		}
		return "SMALLINT"
	case "smallint", "int2":
		return "SMALLINT"
	case "int", "integer", "int4", "mediumint":
		return "INTEGER"
	case "bigint", "int8":
		return "BIGINT"
	case "decimal", "numeric":
		if ps := precisionArgs(args, col.Precision, col.Scale); ps != "" {
			return "NUMERIC(" + ps + ")"
		}
		return "NUMERIC"
	case "float", "real":
		return "REAL"
	case "double", "double precision":
		return "DOUBLE PRECISION"
	case "bool", "boolean":
		return "BOOLEAN"
	case "datetime", "timestamp", "timestamp without time zone":
		return "TIMESTAMP"
	case "timestamptz", "timestamp with time zone":
		return "TIMESTAMP WITH TIME ZONE"
	case "date":
		return "DATE"
	case "time", "time without time zone":
		return "TIME"
	case "text", "tinytext", "mediumtext", "longtext":
		return "TEXT"
	case "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary", "bytea":
		return "BYTEA"
	case "json":
		return "JSON"
	case "jsonb":
		return "JSONB"
	case "uuid":
		return "UUID"
	default:
		return strings.ToUpper(raw)
	}
}

func (s *PostgresStrategy) CreateTableSQL(table schemavault.Table, columns []schemavault.Column, indexes []schemavault.Index) string {
	var clauses []string
	for _, col := range columns {
		clauses = append(clauses, "  "+s.columnClause(col))
	}

	if pk := primaryKeyColumns(columns, indexes); len(pk) > 0 {
		quoted := make([]string, len(pk))
		for i, name := range pk {
			quoted[i] = s.FormatIdentifier(name)
		}
		clauses = append(clauses, fmt.Sprintf("  CONSTRAINT %s PRIMARY KEY (%s)",
			s.FormatIdentifier(table.Name+"_pkey"), strings.Join(quoted, ", ")))
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(s.tableName(table))
	b.WriteString(" (\n")
	b.WriteString(strings.Join(clauses, ",\n"))
	b.WriteString("\n);")

	for _, idx := range indexes {
		if isPrimaryIndex(idx) {
			continue
		}
		b.WriteString("\n")
		b.WriteString(s.IndexDefinition(table, idx))
	}

	if table.Comment != "" {
		b.WriteString("\nCOMMENT ON TABLE ")
		b.WriteString(s.tableName(table))
		b.WriteString(" IS ")
		b.WriteString(quoteLiteral(table.Comment))
		b.WriteString(";")
	}
	for _, col := range columns {
		if col.Comment == "" {
			continue
		}
		b.WriteString("\nCOMMENT ON COLUMN ")
		b.WriteString(s.tableName(table))
		b.WriteString(".")
		b.WriteString(s.FormatIdentifier(col.Name))
		b.WriteString(" IS ")
		b.WriteString(quoteLiteral(col.Comment))
		b.WriteString(";")
	}
	return b.String()
}

func (s *PostgresStrategy) DropTableSQL(table schemavault.Table) string {
	return "DROP TABLE IF EXISTS " + s.tableName(table) + ";"
}

// IndexDefinition renders one non-primary index as a standalone statement.
// Unique indexes are emitted as CREATE UNIQUE INDEX only, never additionally
// as a named constraint.
func (s *PostgresStrategy) IndexDefinition(table schemavault.Table, idx schemavault.Index) string {
	if isPrimaryIndex(idx) {
		quoted := make([]string, len(idx.Columns))
		for i, name := range idx.Columns {
			quoted[i] = s.FormatIdentifier(name)
		}
		return fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)",
			s.FormatIdentifier(table.Name+"_pkey"), strings.Join(quoted, ", "))
	}

	keyword := "CREATE INDEX"
	if idx.Unique {
		keyword = "CREATE UNIQUE INDEX"
	}
	quoted := make([]string, len(idx.Columns))
	for i, name := range idx.Columns {
		quoted[i] = s.FormatIdentifier(name)
	}
	return fmt.Sprintf("%s %s ON %s (%s);",
		keyword, s.FormatIdentifier(idx.Name), s.tableName(table), strings.Join(quoted, ", "))
}

func (s *PostgresStrategy) AlterTableSQL(table schemavault.Table, diff schemavault.TableDiff) []string {
	name := s.tableName(table)
	var stmts []string

	for _, col := range diff.AddedColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", name, s.columnClause(col)))
	}
	for _, col := range diff.RemovedColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", name, s.FormatIdentifier(col.Name)))
	}
	for _, cd := range diff.ModifiedColumns {
		stmts = append(stmts, s.alterColumn(name, cd)...)
	}

	for _, idx := range diff.AddedIndexes {
		if isPrimaryIndex(idx) {
			continue
		}
		stmts = append(stmts, s.IndexDefinition(table, idx))
	}
	for _, idx := range diff.RemovedIndexes {
		if isPrimaryIndex(idx) {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("DROP INDEX %s;", s.FormatIdentifier(idx.Name)))
	}
	for _, id := range diff.ModifiedIndexes {
		if isPrimaryIndex(id.After) {
			continue
		}
		stmts = append(stmts,
			fmt.Sprintf("DROP INDEX %s;", s.FormatIdentifier(id.Name)),
			s.IndexDefinition(table, id.After))
	}

	if diff.CommentChanged {
		stmts = append(stmts, fmt.Sprintf("COMMENT ON TABLE %s IS %s;", name, quoteLiteral(diff.CommentAfter)))
	}
	return stmts
}

// alterColumn renders one modified column as the minimal set of ALTER
// statements covering what actually changed.
func (s *PostgresStrategy) alterColumn(tableName string, cd schemavault.ColumnDiff) []string {
	col := s.FormatIdentifier(cd.Name)
	var stmts []string

	beforeType := s.FormatColumnType(cd.Before)
	afterType := s.FormatColumnType(cd.After)
	if beforeType != afterType {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;", tableName, col, afterType))
	}

	if cd.Before.Nullable != cd.After.Nullable {
		action := "SET NOT NULL"
		if cd.After.Nullable {
			action = "DROP NOT NULL"
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;", tableName, col, action))
	}

	beforeDefault := defaultClause(cd.Before)
	afterDefault := defaultClause(cd.After)
	if beforeDefault != afterDefault {
		if afterDefault == "" {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", tableName, col))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET %s;", tableName, col, afterDefault))
		}
	}

	if cd.Before.Comment != cd.After.Comment {
		stmts = append(stmts, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;", tableName, col, quoteLiteral(cd.After.Comment)))
	}
	return stmts
}

func (s *PostgresStrategy) tableName(table schemavault.Table) string {
	if table.Schema != "" && table.Schema != "public" {
		return s.FormatIdentifier(table.Schema) + "." + s.FormatIdentifier(table.Name)
	}
	return s.FormatIdentifier(table.Name)
}

func (s *PostgresStrategy) columnClause(col schemavault.Column) string {
	var b strings.Builder
	b.WriteString(s.FormatIdentifier(col.Name))
	b.WriteByte(' ')
	b.WriteString(s.FormatColumnType(col))
	if isAutoIncrement(col) {
		return b.String()
	}
	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	if clause := defaultClause(col); clause != "" {
		b.WriteByte(' ')
		b.WriteString(clause)
	}
	return b.String()
}

func lengthArg(args string, maxLength *int64) string {
	if args != "" {
		return args
	}
	if maxLength != nil && *maxLength > 0 {
		return strconv.FormatInt(*maxLength, 10)
	}
	return ""
}

func precisionArgs(args string, precision, scale *int64) string {
	if args != "" {
		return args
	}
	if precision == nil || *precision <= 0 {
		return ""
	}
	if scale != nil && *scale > 0 {
		return fmt.Sprintf("%d,%d", *precision, *scale)
	}
	return strconv.FormatInt(*precision, 10)
}
