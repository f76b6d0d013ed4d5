package capture

import (
	"sort"

	"github.com/schemavault/schemavault"
	"github.com/schemavault/schemavault/extract"
)

// GroupIndexRows folds flat per-member-column catalog rows into one Index per
// index name. Rows sharing a name form one group; each group's members are
// ordered by the catalog's intra-index sequence number, which carries the
// composite-index semantics. Two indexes with the same columns in different
// positions stay distinct because the grouping key is the index name alone
// and member order comes from the sequence, never from a set.
func GroupIndexRows(tableID int64, rows []extract.IndexColumnRow) []schemavault.Index {
	grouped := map[string][]extract.IndexColumnRow{}
	var order []string

	for _, row := range rows {
		if _, seen := grouped[row.IndexName]; !seen {
			order = append(order, row.IndexName)
		}
		grouped[row.IndexName] = append(grouped[row.IndexName], row)
	}

	indexes := make([]schemavault.Index, 0, len(order))
	for _, name := range order {
		members := grouped[name]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].SeqInIndex < members[j].SeqInIndex
		})

		idx := schemavault.Index{
			TableID:  tableID,
			Name:     name,
			Type:     members[0].Type,
			Unique:   members[0].Unique,
			Primary:  members[0].Primary,
			Columns:  make([]string, 0, len(members)),
			SubParts: make([]int64, 0, len(members)),
			Comment:  members[0].Comment,
		}
		for _, m := range members {
			idx.Columns = append(idx.Columns, m.ColumnName)
			if m.SubPart != nil {
				idx.SubParts = append(idx.SubParts, *m.SubPart)
			} else {
				idx.SubParts = append(idx.SubParts, 0)
			}
		}
		indexes = append(indexes, idx)
	}

	return indexes
}
