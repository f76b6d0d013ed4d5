package ddl

import (
	"fmt"
	"strings"

	"github.com/schemavault/schemavault"
)

// MySQLStrategy renders DDL for the MySQL family. All key clauses live
// inline in the CREATE TABLE body; table options (engine, charset, comment)
// trail the closing parenthesis.
type MySQLStrategy struct {
	dialect schemavault.Dialect
}

func (s *MySQLStrategy) Dialect() schemavault.Dialect { return s.dialect }

func (s *MySQLStrategy) FormatIdentifier(name string) string {
	return formatIdentifier(name, "`")
}

// FormatColumnType uppercases the base type keyword of the captured native
// column type and leaves the argument list untouched, so enum and set
// member literals survive.
func (s *MySQLStrategy) FormatColumnType(col schemavault.Column) string {
	raw := col.ColumnType
	if raw == "" {
		raw = col.DataType
	}
	base, args, suffix := splitTypeArgs(raw)
	out := strings.ToUpper(strings.TrimSpace(base))
	if args != "" {
		out += "(" + args + ")"
	}
	if suffix != "" {
		out += " " + strings.ToUpper(strings.TrimSpace(suffix))
	}
	return out
}

func (s *MySQLStrategy) CreateTableSQL(table schemavault.Table, columns []schemavault.Column, indexes []schemavault.Index) string {
	var clauses []string
	for _, col := range columns {
		clauses = append(clauses, "  "+s.columnClause(col))
	}

	if pk := primaryKeyColumns(columns, indexes); len(pk) > 0 {
		clauses = append(clauses, "  PRIMARY KEY ("+s.memberList(pk, nil)+")")
	}
	for _, idx := range indexes {
		if isPrimaryIndex(idx) {
			continue
		}
		clauses = append(clauses, "  "+s.IndexDefinition(table, idx))
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(s.tableName(table))
	b.WriteString(" (\n")
	b.WriteString(strings.Join(clauses, ",\n"))
	b.WriteString("\n)")
	if table.Engine != "" {
		b.WriteString(" ENGINE=")
		b.WriteString(table.Engine)
	}
	if table.Charset != "" {
		b.WriteString(" DEFAULT CHARSET=")
		b.WriteString(table.Charset)
	}
	if table.Collation != "" {
		b.WriteString(" COLLATE=")
		b.WriteString(table.Collation)
	}
	if table.Comment != "" {
		b.WriteString(" COMMENT=")
		b.WriteString(quoteLiteral(table.Comment))
	}
	b.WriteString(";")
	return b.String()
}

func (s *MySQLStrategy) DropTableSQL(table schemavault.Table) string {
	return "DROP TABLE IF EXISTS " + s.tableName(table) + ";"
}

// IndexDefinition renders one non-primary index as an inline body clause.
func (s *MySQLStrategy) IndexDefinition(table schemavault.Table, idx schemavault.Index) string {
	members := s.memberList(idx.Columns, idx.SubParts)
	if isPrimaryIndex(idx) {
		return "PRIMARY KEY (" + members + ")"
	}
	keyword := "KEY"
	if idx.Unique {
		keyword = "UNIQUE KEY"
	}
	return keyword + " " + s.FormatIdentifier(idx.Name) + " (" + members + ")"
}

func (s *MySQLStrategy) AlterTableSQL(table schemavault.Table, diff schemavault.TableDiff) []string {
	name := s.tableName(table)
	var stmts []string

	for _, col := range diff.AddedColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", name, s.columnClause(col)))
	}
	for _, col := range diff.RemovedColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", name, s.FormatIdentifier(col.Name)))
	}
	for _, cd := range diff.ModifiedColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", name, s.columnClause(cd.After)))
	}

	for _, idx := range diff.AddedIndexes {
		if isPrimaryIndex(idx) {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s;", name, s.IndexDefinition(table, idx)))
	}
	for _, idx := range diff.RemovedIndexes {
		if isPrimaryIndex(idx) {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP INDEX %s;", name, s.FormatIdentifier(idx.Name)))
	}
	for _, id := range diff.ModifiedIndexes {
		if isPrimaryIndex(id.After) {
			continue
		}
		stmts = append(stmts,
			fmt.Sprintf("ALTER TABLE %s DROP INDEX %s;", name, s.FormatIdentifier(id.Name)),
			fmt.Sprintf("ALTER TABLE %s ADD %s;", name, s.IndexDefinition(table, id.After)))
	}

	if diff.CommentChanged {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s COMMENT=%s;", name, quoteLiteral(diff.CommentAfter)))
	}
	return stmts
}

func (s *MySQLStrategy) tableName(table schemavault.Table) string {
	if table.Schema != "" {
		return s.FormatIdentifier(table.Schema) + "." + s.FormatIdentifier(table.Name)
	}
	return s.FormatIdentifier(table.Name)
}

// columnClause renders one column definition. Auto-increment columns take
// only the AUTO_INCREMENT modifier; nullability and defaults are implied by
// the key clause.
func (s *MySQLStrategy) columnClause(col schemavault.Column) string {
	var b strings.Builder
	b.WriteString(s.FormatIdentifier(col.Name))
	b.WriteByte(' ')
	b.WriteString(s.FormatColumnType(col))
	if isAutoIncrement(col) {
		b.WriteString(" AUTO_INCREMENT")
		return b.String()
	}
	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	if clause := defaultClause(col); clause != "" {
		b.WriteByte(' ')
		b.WriteString(clause)
	}
	if col.Comment != "" {
		b.WriteString(" COMMENT ")
		b.WriteString(quoteLiteral(col.Comment))
	}
	return b.String()
}

// memberList renders an index's member columns, attaching prefix lengths
// where present. subParts may be nil for callers without prefix data.
func (s *MySQLStrategy) memberList(columns []string, subParts []int64) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = s.FormatIdentifier(col)
		if i < len(subParts) && subParts[i] > 0 {
			parts[i] += fmt.Sprintf("(%d)", subParts[i])
		}
	}
	return strings.Join(parts, ", ")
}
