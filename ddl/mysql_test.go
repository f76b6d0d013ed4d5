package ddl

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/schemavault/schemavault"
)

func mysqlStrategy(t *testing.T) Strategy {
	t.Helper()
	s, err := New(schemavault.DialectMySQL)
	assert.NoError(t, err)
	return s
}

// sampleTable mirrors t(id int PK auto-increment, name varchar(50) not null
// default 'x') with one non-unique index idx_name(name).
func sampleTable() (schemavault.Table, []schemavault.Column, []schemavault.Index) {
	table := schemavault.Table{
		Name:    "t",
		Engine:  "InnoDB",
		Charset: "utf8mb4",
	}
	columns := []schemavault.Column{
		{OrdinalPosition: 1, Name: "id", DataType: "int", ColumnType: "int",
			Key: schemavault.KeyPrimary, Extra: "auto_increment"},
		{OrdinalPosition: 2, Name: "name", DataType: "varchar", ColumnType: "varchar(50)",
			DefaultValue: strp("x")},
	}
	indexes := []schemavault.Index{
		{Name: "PRIMARY", Type: "BTREE", Unique: true, Primary: true, Columns: []string{"id"}, SubParts: []int64{0}},
		{Name: "idx_name", Type: "BTREE", Columns: []string{"name"}, SubParts: []int64{0}},
	}
	return table, columns, indexes
}

func TestMySQLCreateTable(t *testing.T) {
	s := mysqlStrategy(t)
	table, columns, indexes := sampleTable()

	sql := s.CreateTableSQL(table, columns, indexes)

	assert.Contains(t, sql, "CREATE TABLE `t` (")
	assert.Contains(t, sql, "`id` INT AUTO_INCREMENT")
	assert.Contains(t, sql, "`name` VARCHAR(50) NOT NULL DEFAULT 'x'")
	assert.Contains(t, sql, "KEY `idx_name` (`name`)")
	assert.Contains(t, sql, "ENGINE=InnoDB")
	assert.Contains(t, sql, "DEFAULT CHARSET=utf8mb4")

	// Exactly one primary-key clause, and the index appears once.
	assert.Equal(t, 1, strings.Count(sql, "PRIMARY KEY (`id`)"))
	assert.Equal(t, 1, strings.Count(sql, "idx_name"))
}

func TestMySQLFormatColumnType(t *testing.T) {
	s := mysqlStrategy(t)

	tests := []struct {
		col  schemavault.Column
		want string
	}{
		{schemavault.Column{ColumnType: "int"}, "INT"},
		{schemavault.Column{ColumnType: "varchar(50)"}, "VARCHAR(50)"},
		{schemavault.Column{ColumnType: "decimal(10,2) unsigned"}, "DECIMAL(10,2) UNSIGNED"},
		{schemavault.Column{ColumnType: "enum('a','b')"}, "ENUM('a','b')"},
		{schemavault.Column{DataType: "geometry"}, "GEOMETRY"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.FormatColumnType(tt.col))
	}
}

func TestMySQLIndexSubParts(t *testing.T) {
	s := mysqlStrategy(t)
	def := s.IndexDefinition(schemavault.Table{Name: "t"}, schemavault.Index{
		Name:     "idx_body",
		Columns:  []string{"body", "lang"},
		SubParts: []int64{10, 0},
	})
	assert.Equal(t, "KEY `idx_body` (`body`(10), `lang`)", def)
}

func TestMySQLUniqueIndexEmittedOnce(t *testing.T) {
	s := mysqlStrategy(t)
	table := schemavault.Table{Name: "users"}
	columns := []schemavault.Column{
		{OrdinalPosition: 1, Name: "email", DataType: "varchar", ColumnType: "varchar(100)"},
	}
	indexes := []schemavault.Index{
		{Name: "uq_email", Unique: true, Columns: []string{"email"}, SubParts: []int64{0}},
	}

	sql := s.CreateTableSQL(table, columns, indexes)
	assert.Equal(t, 1, strings.Count(sql, "uq_email"))
	assert.Contains(t, sql, "UNIQUE KEY `uq_email` (`email`)")
}

func TestMySQLPrimaryKeyFromColumnRole(t *testing.T) {
	// No primary index row; the column key role alone must still yield a
	// primary-key clause.
	s := mysqlStrategy(t)
	sql := s.CreateTableSQL(schemavault.Table{Name: "t"}, []schemavault.Column{
		{OrdinalPosition: 1, Name: "id", DataType: "int", ColumnType: "int", Key: schemavault.KeyPrimary},
	}, nil)
	assert.Contains(t, sql, "PRIMARY KEY (`id`)")
}

func TestMySQLAlterTable(t *testing.T) {
	s := mysqlStrategy(t)
	table := schemavault.Table{Name: "t"}

	diff := schemavault.TableDiff{
		Name: "t",
		AddedColumns: []schemavault.Column{
			{Name: "created_at", DataType: "datetime", ColumnType: "datetime", Nullable: true},
		},
		RemovedColumns: []schemavault.Column{{Name: "legacy"}},
		ModifiedColumns: []schemavault.ColumnDiff{
			{
				Name:   "name",
				Before: schemavault.Column{Name: "name", ColumnType: "varchar(50)"},
				After:  schemavault.Column{Name: "name", ColumnType: "varchar(100)"},
			},
		},
		AddedIndexes: []schemavault.Index{
			{Name: "idx_created", Columns: []string{"created_at"}, SubParts: []int64{0}},
		},
		RemovedIndexes: []schemavault.Index{{Name: "idx_old"}},
		CommentChanged: true,
		CommentAfter:   "orders",
	}

	stmts := s.AlterTableSQL(table, diff)
	assert.Equal(t, []string{
		"ALTER TABLE `t` ADD COLUMN `created_at` DATETIME;",
		"ALTER TABLE `t` DROP COLUMN `legacy`;",
		"ALTER TABLE `t` MODIFY COLUMN `name` VARCHAR(100) NOT NULL;",
		"ALTER TABLE `t` ADD KEY `idx_created` (`created_at`);",
		"ALTER TABLE `t` DROP INDEX `idx_old`;",
		"ALTER TABLE `t` COMMENT='orders';",
	}, stmts)
}

func TestMySQLAlterSkipsPrimaryIndexChanges(t *testing.T) {
	s := mysqlStrategy(t)
	stmts := s.AlterTableSQL(schemavault.Table{Name: "t"}, schemavault.TableDiff{
		AddedIndexes:   []schemavault.Index{{Name: "PRIMARY", Primary: true, Columns: []string{"id"}}},
		RemovedIndexes: []schemavault.Index{{Name: "PRIMARY", Primary: true, Columns: []string{"old_id"}}},
	})
	assert.Equal(t, 0, len(stmts))
}
