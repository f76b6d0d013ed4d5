package extract

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/schemavault/schemavault"
)

func TestMySQLConnectionString(t *testing.T) {
	e := &MySQLExtractor{dialect: schemavault.DialectMySQL}

	ds := schemavault.Datasource{
		Host:     "db.internal",
		Port:     3306,
		Database: "orders",
		Username: "capture",
		Password: "secret",
	}
	assert.Equal(t, "capture:secret@tcp(db.internal:3306)/orders?parseTime=true", e.ConnectionString(ds))

	ds.Password = ""
	ds.ConnectTimeout = 10 * time.Second
	assert.Equal(t, "capture@tcp(db.internal:3306)/orders?parseTime=true&timeout=10s", e.ConnectionString(ds))
}

func TestCharsetFromCollation(t *testing.T) {
	testCases := []struct {
		collation string
		expected  string
	}{
		{"utf8mb4_general_ci", "utf8mb4"},
		{"latin1_swedish_ci", "latin1"},
		{"binary", "binary"},
		{"", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, charsetFromCollation(tc.collation))
	}
}
