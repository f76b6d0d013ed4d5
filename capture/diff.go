package capture

import (
	"context"

	"github.com/schemavault/schemavault"
)

// CompareVersions computes the structural difference between two captured
// versions. Tables are keyed by (schema, name); for tables present in both
// versions, columns are diffed by column name and indexes by index name. A
// column counts as modified when its full type, nullability, key role,
// extra modifiers, default, or comment differ; an index when its uniqueness,
// primary flag, type, member-column list, or sub-part list differ.
func (s *Service) CompareVersions(ctx context.Context, fromID, toID string) (*schemavault.VersionDiff, error) {
	from, err := s.CompleteStructure(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.CompleteStructure(ctx, toID)
	if err != nil {
		return nil, err
	}

	diff := &schemavault.VersionDiff{
		FromVersion: fromID,
		ToVersion:   toID,
	}

	// An uncaptured version must not be diffed as an empty database; the
	// marker is surfaced in-band the way CompleteStructure reports it.
	if from.Error != "" {
		diff.Error = fromID + ": " + from.Error
		return diff, nil
	}
	if to.Error != "" {
		diff.Error = toID + ": " + to.Error
		return diff, nil
	}

	fromTables := tablesByKey(from)
	toTables := tablesByKey(to)

	for _, ts := range to.Tables {
		key := tableKey(ts.Table)
		before, exists := fromTables[key]
		if !exists {
			diff.AddedTables = append(diff.AddedTables, ts.Table)
			continue
		}
		if td := diffTable(before, ts); td.HasChanges() {
			diff.ModifiedTables = append(diff.ModifiedTables, td)
		}
	}

	for _, ts := range from.Tables {
		if _, exists := toTables[tableKey(ts.Table)]; !exists {
			diff.RemovedTables = append(diff.RemovedTables, ts.Table)
		}
	}

	return diff, nil
}

func tableKey(t schemavault.Table) string {
	return t.Schema + "\x00" + t.Name
}

func tablesByKey(structure *schemavault.DatabaseStructure) map[string]schemavault.TableStructure {
	m := make(map[string]schemavault.TableStructure, len(structure.Tables))
	for _, ts := range structure.Tables {
		m[tableKey(ts.Table)] = ts
	}
	return m
}

func diffTable(before, after schemavault.TableStructure) schemavault.TableDiff {
	td := schemavault.TableDiff{
		Schema: after.Table.Schema,
		Name:   after.Table.Name,
	}

	if before.Table.Comment != after.Table.Comment {
		td.CommentChanged = true
		td.CommentBefore = before.Table.Comment
		td.CommentAfter = after.Table.Comment
	}

	beforeColumns := map[string]schemavault.Column{}
	for _, c := range before.Columns {
		beforeColumns[c.Name] = c
	}
	afterColumns := map[string]schemavault.Column{}
	for _, c := range after.Columns {
		afterColumns[c.Name] = c
	}

	for _, c := range after.Columns {
		b, exists := beforeColumns[c.Name]
		if !exists {
			td.AddedColumns = append(td.AddedColumns, c)
			continue
		}
		if !columnsEqual(b, c) {
			td.ModifiedColumns = append(td.ModifiedColumns, schemavault.ColumnDiff{
				Name:   c.Name,
				Before: b,
				After:  c,
			})
		}
	}
	for _, c := range before.Columns {
		if _, exists := afterColumns[c.Name]; !exists {
			td.RemovedColumns = append(td.RemovedColumns, c)
		}
	}

	beforeIndexes := map[string]schemavault.Index{}
	for _, i := range before.Indexes {
		beforeIndexes[i.Name] = i
	}
	afterIndexes := map[string]schemavault.Index{}
	for _, i := range after.Indexes {
		afterIndexes[i.Name] = i
	}

	for _, i := range after.Indexes {
		b, exists := beforeIndexes[i.Name]
		if !exists {
			td.AddedIndexes = append(td.AddedIndexes, i)
			continue
		}
		if !indexesEqual(b, i) {
			td.ModifiedIndexes = append(td.ModifiedIndexes, schemavault.IndexDiff{
				Name:   i.Name,
				Before: b,
				After:  i,
			})
		}
	}
	for _, i := range before.Indexes {
		if _, exists := afterIndexes[i.Name]; !exists {
			td.RemovedIndexes = append(td.RemovedIndexes, i)
		}
	}

	return td
}

func columnsEqual(a, b schemavault.Column) bool {
	return a.ColumnType == b.ColumnType &&
		a.Nullable == b.Nullable &&
		a.Key == b.Key &&
		a.Extra == b.Extra &&
		a.Comment == b.Comment &&
		stringPtrEqual(a.DefaultValue, b.DefaultValue)
}

func indexesEqual(a, b schemavault.Index) bool {
	if a.Unique != b.Unique || a.Primary != b.Primary || a.Type != b.Type {
		return false
	}
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	if len(a.SubParts) != len(b.SubParts) {
		return false
	}
	for i := range a.SubParts {
		if a.SubParts[i] != b.SubParts[i] {
			return false
		}
	}
	return true
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
