package capture

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/schemavault/schemavault/extract"
)

func TestGroupIndexRowsOrdersMembersBySequence(t *testing.T) {
	sub := func(v int64) *int64 { return &v }

	rows := []extract.IndexColumnRow{
		{IndexName: "idx_name", Type: "BTREE", ColumnName: "b", SeqInIndex: 2},
		{IndexName: "idx_name", Type: "BTREE", ColumnName: "a", SeqInIndex: 1, SubPart: sub(10)},
	}

	indexes := GroupIndexRows(7, rows)
	assert.Equal(t, 1, len(indexes))
	assert.Equal(t, int64(7), indexes[0].TableID)
	assert.Equal(t, []string{"a", "b"}, indexes[0].Columns)
	assert.Equal(t, []int64{10, 0}, indexes[0].SubParts)
}

func TestGroupIndexRowsKeepsIndexesDistinct(t *testing.T) {
	// Two composite indexes over the same columns in different positions
	// must not be merged.
	rows := []extract.IndexColumnRow{
		{IndexName: "idx_ab", ColumnName: "a", SeqInIndex: 1},
		{IndexName: "idx_ab", ColumnName: "b", SeqInIndex: 2},
		{IndexName: "idx_ba", ColumnName: "b", SeqInIndex: 1},
		{IndexName: "idx_ba", ColumnName: "a", SeqInIndex: 2},
	}

	indexes := GroupIndexRows(1, rows)
	assert.Equal(t, 2, len(indexes))
	assert.Equal(t, "idx_ab", indexes[0].Name)
	assert.Equal(t, []string{"a", "b"}, indexes[0].Columns)
	assert.Equal(t, "idx_ba", indexes[1].Name)
	assert.Equal(t, []string{"b", "a"}, indexes[1].Columns)
}

func TestGroupIndexRowsCarriesFlags(t *testing.T) {
	rows := []extract.IndexColumnRow{
		{IndexName: "PRIMARY", Type: "BTREE", Unique: true, Primary: true, ColumnName: "id", SeqInIndex: 1},
		{IndexName: "uq_email", Type: "BTREE", Unique: true, ColumnName: "email", SeqInIndex: 1},
	}

	indexes := GroupIndexRows(1, rows)
	assert.Equal(t, 2, len(indexes))
	assert.True(t, indexes[0].Primary)
	assert.True(t, indexes[0].Unique)
	assert.False(t, indexes[1].Primary)
	assert.True(t, indexes[1].Unique)
}

func TestGroupIndexRowsEmpty(t *testing.T) {
	assert.Equal(t, 0, len(GroupIndexRows(1, nil)))
}
