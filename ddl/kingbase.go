package ddl

import "github.com/schemavault/schemavault"

// KingbaseStrategy renders DDL for KingbaseES. The rendering follows the
// PostgreSQL family except that every creation script starts with an
// unconditional guarded drop, matching the deployment convention of that
// variant.
type KingbaseStrategy struct {
	PostgresStrategy
}

func (s *KingbaseStrategy) CreateTableSQL(table schemavault.Table, columns []schemavault.Column, indexes []schemavault.Index) string {
	return s.DropTableSQL(table) + "\n" + s.PostgresStrategy.CreateTableSQL(table, columns, indexes)
}
