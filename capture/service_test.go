package capture

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/schemavault/schemavault"
	"github.com/schemavault/schemavault/extract"
	"github.com/schemavault/schemavault/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st, schemavault.DefaultConfig(), nil)
}

// sampleSchema mirrors a source with table t(id int PK auto-increment,
// name varchar(50) not null default 'x') and one index idx_name(name).
func sampleSchema() *extractedSchema {
	def := "x"
	return &extractedSchema{
		info: extract.DatabaseInfo{
			Name:      "shop",
			Charset:   "utf8mb4",
			Collation: "utf8mb4_general_ci",
		},
		tables: []extractedTable{
			{
				row: extract.TableRow{
					Name:   "t",
					Kind:   "BASE TABLE",
					Engine: "InnoDB",
				},
				columns: []extract.ColumnRow{
					{OrdinalPosition: 1, Name: "id", DataType: "int", ColumnType: "int",
						Key: schemavault.KeyPrimary, Extra: "auto_increment"},
					{OrdinalPosition: 2, Name: "name", DataType: "varchar", ColumnType: "varchar(50)",
						DefaultValue: &def},
				},
				indexes: []extract.IndexColumnRow{
					{IndexName: "PRIMARY", Type: "BTREE", Unique: true, Primary: true,
						ColumnName: "id", SeqInIndex: 1},
					{IndexName: "idx_name", Type: "BTREE", ColumnName: "name", SeqInIndex: 1},
				},
			},
		},
	}
}

func TestPersistAndReassembleStructure(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", sampleSchema()))

	structure, err := s.CompleteStructure(ctx, "v1")
	assert.NoError(t, err)
	assert.Equal(t, "", structure.Error)
	assert.Equal(t, "shop", structure.Database.Database)
	assert.Equal(t, "u-1", structure.Database.UserID)
	assert.Equal(t, 1, len(structure.Tables))

	ts := structure.Tables[0]
	assert.Equal(t, 2, len(ts.Columns))
	assert.Equal(t, "id", ts.Columns[0].Name)
	assert.Equal(t, "name", ts.Columns[1].Name)

	// Ordinals are contiguous from 1.
	for i, c := range ts.Columns {
		assert.Equal(t, i+1, c.OrdinalPosition)
	}

	assert.Equal(t, 2, len(ts.Indexes))
	for _, idx := range ts.Indexes {
		if idx.Name == "idx_name" {
			assert.Equal(t, []string{"name"}, idx.Columns)
			assert.False(t, idx.Unique)
		}
	}
}

func TestCompleteStructureNotCaptured(t *testing.T) {
	s := newTestService(t)

	structure, err := s.CompleteStructure(context.Background(), "v-none")
	assert.NoError(t, err)
	assert.Equal(t, NotCapturedMarker, structure.Error)
	assert.Zero(t, structure.Database)
	assert.Equal(t, 0, len(structure.Tables))
}

func TestRecaptureSameVersionDoesNotAccumulate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", sampleSchema()))
	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", sampleSchema()))

	snap, err := s.VersionSnapshot(ctx, "v1")
	assert.NoError(t, err)
	assert.NotZero(t, snap)

	structure, err := s.CompleteStructure(ctx, "v1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(structure.Tables))
	assert.Equal(t, 2, len(structure.Tables[0].Columns))
	assert.Equal(t, 2, len(structure.Tables[0].Indexes))
}

func TestCaptureTwiceIntoTwoVersionsIsIdentical(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", sampleSchema()))
	assert.NoError(t, s.persistSchema(ctx, "v2", "u-1", sampleSchema()))

	diff, err := s.CompareVersions(ctx, "v1", "v2")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(diff.AddedTables))
	assert.Equal(t, 0, len(diff.RemovedTables))
	assert.Equal(t, 0, len(diff.ModifiedTables))
}

func TestVersionTablesOrderedByName(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	schema := sampleSchema()
	schema.tables = append(schema.tables, extractedTable{
		row: extract.TableRow{Name: "accounts", Kind: "BASE TABLE"},
	})
	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", schema))

	tables, err := s.VersionTables(ctx, "v1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(tables))
	assert.Equal(t, "accounts", tables[0].Name)
	assert.Equal(t, "t", tables[1].Name)
}

func TestCaptureUnknownDialectFailsClosed(t *testing.T) {
	s := newTestService(t)

	err := s.Capture(context.Background(), "v1", schemavault.Datasource{
		Dialect: schemavault.Dialect("db2"),
	}, "u-1")
	assert.IsError(t, err, schemavault.ErrUnsupportedDialect)
}
