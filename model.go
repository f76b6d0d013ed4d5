package schemavault

import "time"

// Snapshot is the persisted record of one database's structural metadata at
// one version. At most one Snapshot exists per version id; re-capturing a
// version replaces its rows wholesale, it never mutates them.
type Snapshot struct {
	ID         int64     `json:"id"`
	VersionID  string    `json:"versionId"`
	Database   string    `json:"database"`
	Charset    string    `json:"charset"`
	Collation  string    `json:"collation"`
	CapturedAt time.Time `json:"capturedAt"`
	UserID     string    `json:"userId"`
}

// Table is one captured table, owned by exactly one Snapshot via its version
// id. (VersionID, Schema, Name) is unique within the store.
type Table struct {
	ID            int64  `json:"id"`
	VersionID     string `json:"versionId"`
	Schema        string `json:"schema"` // empty for non-schema-based dialects
	Name          string `json:"name"`
	Comment       string `json:"comment"`
	Kind          string `json:"kind"` // e.g. BASE TABLE
	Engine        string `json:"engine"`
	Charset       string `json:"charset"`
	Collation     string `json:"collation"`
	RowFormat     string `json:"rowFormat"`
	Rows          int64  `json:"rows"`
	AvgRowLength  int64  `json:"avgRowLength"`
	DataLength    int64  `json:"dataLength"`
	IndexLength   int64  `json:"indexLength"`
	AutoIncrement int64  `json:"autoIncrement"`
}

// Column is one field of a Table. OrdinalPosition is 1-based and defines
// declaration order; within one table the positions are unique and contiguous
// from 1, and regeneration must preserve them exactly.
type Column struct {
	ID              int64   `json:"id"`
	TableID         int64   `json:"tableId"`
	OrdinalPosition int     `json:"ordinalPosition"`
	Name            string  `json:"name"`
	DefaultValue    *string `json:"defaultValue"` // raw dialect literal or keyword; nil means no default
	Nullable        bool    `json:"nullable"`
	DataType        string  `json:"dataType"`   // declared type, e.g. varchar
	ColumnType      string  `json:"columnType"` // normalized full type, e.g. varchar(255)
	MaxLength       *int64  `json:"maxLength"`  // for string types (optional)
	Precision       *int64  `json:"precision"`  // for numeric types (optional)
	Scale           *int64  `json:"scale"`      // for numeric types (optional)
	Charset         string  `json:"charset"`
	Collation       string  `json:"collation"`
	Key             string  `json:"key"`   // PRI, UNI, MUL or empty
	Extra           string  `json:"extra"` // e.g. auto_increment
	Comment         string  `json:"comment"`
}

// ColumnKey values for Column.Key.
const (
	KeyPrimary  = "PRI"
	KeyUnique   = "UNI"
	KeyMultiple = "MUL"
)

// Index is one logical index of a Table, reconstructed from the flat
// per-member-column rows the catalog reports. Columns and SubParts are
// parallel slices ordered by the catalog's intra-index sequence; a SubParts
// entry of 0 means the member has no prefix length.
type Index struct {
	ID       int64    `json:"id"`
	TableID  int64    `json:"tableId"`
	Name     string   `json:"name"`
	Type     string   `json:"type"` // e.g. BTREE, HASH
	Unique   bool     `json:"unique"`
	Primary  bool     `json:"primary"`
	Columns  []string `json:"columns"`
	SubParts []int64  `json:"subParts"`
	Comment  string   `json:"comment"`
}

// TableStructure is one table with its ordered columns and grouped indexes,
// as reassembled from the store.
type TableStructure struct {
	Table   Table    `json:"table"`
	Columns []Column `json:"columns"` // ordered by ordinal position
	Indexes []Index  `json:"indexes"` // ordered by index name
}

// DatabaseStructure is the full nested structure of one captured version.
// Error is set instead of Database/Tables when the version has no captured
// snapshot, so read-only callers can tell "never captured" from a fault.
type DatabaseStructure struct {
	VersionID string           `json:"versionId"`
	Error     string           `json:"error,omitempty"`
	Database  *Snapshot        `json:"database,omitempty"`
	Tables    []TableStructure `json:"tables,omitempty"`
}

// VersionDiff is the structural difference between two captured versions.
// Error mirrors DatabaseStructure.Error: it is set instead of the table
// lists when either compared version has no captured snapshot.
type VersionDiff struct {
	FromVersion    string      `json:"fromVersion"`
	ToVersion      string      `json:"toVersion"`
	Error          string      `json:"error,omitempty"`
	AddedTables    []Table     `json:"addedTables"`
	RemovedTables  []Table     `json:"removedTables"`
	ModifiedTables []TableDiff `json:"modifiedTables"`
}

// TableDiff describes changes to one table present in both compared versions.
// Columns are keyed by name, indexes by index name.
type TableDiff struct {
	Schema          string       `json:"schema"`
	Name            string       `json:"name"`
	CommentChanged  bool         `json:"commentChanged"`
	CommentBefore   string       `json:"commentBefore,omitempty"`
	CommentAfter    string       `json:"commentAfter,omitempty"`
	AddedColumns    []Column     `json:"addedColumns"`
	RemovedColumns  []Column     `json:"removedColumns"`
	ModifiedColumns []ColumnDiff `json:"modifiedColumns"`
	AddedIndexes    []Index      `json:"addedIndexes"`
	RemovedIndexes  []Index      `json:"removedIndexes"`
	ModifiedIndexes []IndexDiff  `json:"modifiedIndexes"`
}

// ColumnDiff is a before/after pair for one modified column.
type ColumnDiff struct {
	Name   string `json:"name"`
	Before Column `json:"before"`
	After  Column `json:"after"`
}

// IndexDiff is a before/after pair for one modified index.
type IndexDiff struct {
	Name   string `json:"name"`
	Before Index  `json:"before"`
	After  Index  `json:"after"`
}

// HasChanges reports whether the diff carries any table-level change.
func (d TableDiff) HasChanges() bool {
	return d.CommentChanged ||
		len(d.AddedColumns) > 0 ||
		len(d.RemovedColumns) > 0 ||
		len(d.ModifiedColumns) > 0 ||
		len(d.AddedIndexes) > 0 ||
		len(d.RemovedIndexes) > 0 ||
		len(d.ModifiedIndexes) > 0
}
