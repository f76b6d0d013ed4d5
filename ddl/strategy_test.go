package ddl

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/schemavault/schemavault"
)

func TestNewResolvesEveryDialect(t *testing.T) {
	for _, dialect := range []schemavault.Dialect{
		schemavault.DialectMySQL,
		schemavault.DialectMariaDB,
		schemavault.DialectPostgres,
		schemavault.DialectKingbase,
	} {
		s, err := New(dialect)
		assert.NoError(t, err)
		assert.Equal(t, dialect, s.Dialect())
	}
}

func TestNewUnknownDialect(t *testing.T) {
	_, err := New(schemavault.Dialect("oracle"))
	assert.IsError(t, err, schemavault.ErrUnsupportedDialect)
}

func TestFormatIdentifierIdempotent(t *testing.T) {
	s := &MySQLStrategy{dialect: schemavault.DialectMySQL}

	once := s.FormatIdentifier("users")
	assert.Equal(t, "`users`", once)
	assert.Equal(t, once, s.FormatIdentifier(once))

	// Stray quoting and brackets from upstream serialization are
	// normalized, not compounded.
	assert.Equal(t, "`users`", s.FormatIdentifier("[`users`]"))

	p := &PostgresStrategy{dialect: schemavault.DialectPostgres}
	assert.Equal(t, `"users"`, p.FormatIdentifier(p.FormatIdentifier("users")))
}

func TestSplitTypeArgs(t *testing.T) {
	base, args, suffix := splitTypeArgs("decimal(10,2) unsigned")
	assert.Equal(t, "decimal", base)
	assert.Equal(t, "10,2", args)
	assert.Equal(t, " unsigned", suffix)

	base, args, suffix = splitTypeArgs("int")
	assert.Equal(t, "int", base)
	assert.Equal(t, "", args)
	assert.Equal(t, "", suffix)
}

func TestScriptWithDrop(t *testing.T) {
	structure := &schemavault.DatabaseStructure{
		Tables: []schemavault.TableStructure{
			{
				Table: schemavault.Table{Name: "t"},
				Columns: []schemavault.Column{
					{OrdinalPosition: 1, Name: "id", DataType: "int", ColumnType: "int"},
				},
			},
		},
	}

	sql, err := Script(structure, schemavault.DialectMySQL, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, strings.Count(sql, "DROP TABLE IF EXISTS `t`;"))
	assert.Contains(t, sql, "CREATE TABLE `t`")

	// The kingbase script already opens with a drop; no second one.
	sql, err = Script(structure, schemavault.DialectKingbase, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, strings.Count(sql, `DROP TABLE IF EXISTS "t";`))
}

func TestScriptUnknownDialect(t *testing.T) {
	_, err := Script(&schemavault.DatabaseStructure{}, schemavault.Dialect("db2"), false)
	assert.IsError(t, err, schemavault.ErrUnsupportedDialect)
}
