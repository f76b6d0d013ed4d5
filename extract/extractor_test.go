package extract

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/schemavault/schemavault"
)

func TestNewResolvesRegisteredDialects(t *testing.T) {
	testCases := []struct {
		dialect schemavault.Dialect
		driver  string
	}{
		{schemavault.DialectMySQL, "mysql"},
		{schemavault.DialectMariaDB, "mysql"},
		{schemavault.DialectPostgres, "pgx"},
		{schemavault.DialectKingbase, "pgx"},
	}

	for _, tc := range testCases {
		e, err := New(tc.dialect)
		assert.NoError(t, err)
		assert.Equal(t, tc.dialect, e.Dialect())
		assert.Equal(t, tc.driver, e.DriverName())
	}
}

func TestNewFailsClosedOnUnknownDialect(t *testing.T) {
	_, err := New(schemavault.Dialect("oracle"))
	assert.IsError(t, err, schemavault.ErrUnsupportedDialect)

	_, err = New(schemavault.Dialect(""))
	assert.IsError(t, err, schemavault.ErrUnsupportedDialect)
}
