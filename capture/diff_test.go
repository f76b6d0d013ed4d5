package capture

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/schemavault/schemavault"
	"github.com/schemavault/schemavault/extract"
)

func TestCompareVersionsAddedAndRemoved(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	older := sampleSchema()
	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", older))

	newer := sampleSchema()
	newer.tables = append(newer.tables, extractedTable{
		row: extract.TableRow{Name: "audit_log", Kind: "BASE TABLE"},
	})
	assert.NoError(t, s.persistSchema(ctx, "v2", "u-1", newer))

	diff, err := s.CompareVersions(ctx, "v1", "v2")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(diff.AddedTables))
	assert.Equal(t, "audit_log", diff.AddedTables[0].Name)
	assert.Equal(t, 0, len(diff.RemovedTables))

	// Anti-symmetry: added(A,B) == removed(B,A).
	reverse, err := s.CompareVersions(ctx, "v2", "v1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(reverse.RemovedTables))
	assert.Equal(t, "audit_log", reverse.RemovedTables[0].Name)
	assert.Equal(t, 0, len(reverse.AddedTables))
}

func TestCompareVersionsTableCommentChange(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	older := sampleSchema()
	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", older))

	newer := sampleSchema()
	newer.tables[0].row.Comment = "renamed purpose"
	assert.NoError(t, s.persistSchema(ctx, "v2", "u-1", newer))

	diff, err := s.CompareVersions(ctx, "v1", "v2")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(diff.ModifiedTables))
	assert.True(t, diff.ModifiedTables[0].CommentChanged)
	assert.Equal(t, "renamed purpose", diff.ModifiedTables[0].CommentAfter)
}

func TestCompareVersionsColumnChanges(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	older := sampleSchema()
	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", older))

	newer := sampleSchema()
	// Widen name, drop nothing, add created_at.
	newer.tables[0].columns[1].ColumnType = "varchar(100)"
	newer.tables[0].columns = append(newer.tables[0].columns, extract.ColumnRow{
		OrdinalPosition: 3,
		Name:            "created_at",
		DataType:        "datetime",
		ColumnType:      "datetime",
		Nullable:        true,
	})
	assert.NoError(t, s.persistSchema(ctx, "v2", "u-1", newer))

	diff, err := s.CompareVersions(ctx, "v1", "v2")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(diff.ModifiedTables))

	td := diff.ModifiedTables[0]
	assert.Equal(t, 1, len(td.AddedColumns))
	assert.Equal(t, "created_at", td.AddedColumns[0].Name)
	assert.Equal(t, 0, len(td.RemovedColumns))
	assert.Equal(t, 1, len(td.ModifiedColumns))
	assert.Equal(t, "name", td.ModifiedColumns[0].Name)
	assert.Equal(t, "varchar(50)", td.ModifiedColumns[0].Before.ColumnType)
	assert.Equal(t, "varchar(100)", td.ModifiedColumns[0].After.ColumnType)
}

func TestCompareVersionsIndexChanges(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	older := sampleSchema()
	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", older))

	newer := sampleSchema()
	// idx_name becomes unique; a new composite index appears.
	for i := range newer.tables[0].indexes {
		if newer.tables[0].indexes[i].IndexName == "idx_name" {
			newer.tables[0].indexes[i].Unique = true
		}
	}
	newer.tables[0].indexes = append(newer.tables[0].indexes,
		extract.IndexColumnRow{IndexName: "idx_name_id", Type: "BTREE", ColumnName: "name", SeqInIndex: 1},
		extract.IndexColumnRow{IndexName: "idx_name_id", Type: "BTREE", ColumnName: "id", SeqInIndex: 2},
	)
	assert.NoError(t, s.persistSchema(ctx, "v2", "u-1", newer))

	diff, err := s.CompareVersions(ctx, "v1", "v2")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(diff.ModifiedTables))

	td := diff.ModifiedTables[0]
	assert.Equal(t, 1, len(td.AddedIndexes))
	assert.Equal(t, "idx_name_id", td.AddedIndexes[0].Name)
	assert.Equal(t, []string{"name", "id"}, td.AddedIndexes[0].Columns)
	assert.Equal(t, 1, len(td.ModifiedIndexes))
	assert.Equal(t, "idx_name", td.ModifiedIndexes[0].Name)
	assert.False(t, td.ModifiedIndexes[0].Before.Unique)
	assert.True(t, td.ModifiedIndexes[0].After.Unique)
}

func TestCompareVersionsUncapturedSide(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, s.persistSchema(ctx, "v1", "u-1", sampleSchema()))

	// An uncaptured target must not be diffed as an empty database with
	// every table reported removed.
	diff, err := s.CompareVersions(ctx, "v1", "v-none")
	assert.NoError(t, err)
	assert.Equal(t, "v-none: "+NotCapturedMarker, diff.Error)
	assert.Equal(t, 0, len(diff.AddedTables))
	assert.Equal(t, 0, len(diff.RemovedTables))
	assert.Equal(t, 0, len(diff.ModifiedTables))

	// Same for an uncaptured source.
	diff, err = s.CompareVersions(ctx, "v-none", "v1")
	assert.NoError(t, err)
	assert.Equal(t, "v-none: "+NotCapturedMarker, diff.Error)
	assert.Equal(t, 0, len(diff.AddedTables))
}

func TestColumnsEqualDefaults(t *testing.T) {
	x := "x"
	y := "y"
	a := schemavault.Column{ColumnType: "varchar(50)", DefaultValue: &x}
	b := schemavault.Column{ColumnType: "varchar(50)", DefaultValue: &x}
	assert.True(t, columnsEqual(a, b))

	b.DefaultValue = &y
	assert.False(t, columnsEqual(a, b))

	b.DefaultValue = nil
	assert.False(t, columnsEqual(a, b))
}
