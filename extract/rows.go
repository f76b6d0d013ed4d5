package extract

// Raw catalog rows are normalized at the extractor boundary into one
// canonical field-name schema per record kind. Vendor-cased catalog keys
// (upper-case on one driver, lower-case on another) never escape this
// package.

// DatabaseInfo holds the server/database defaults plus, for schema-based
// dialects, the user-visible schemas after exclusion filtering.
type DatabaseInfo struct {
	Name      string
	Charset   string
	Collation string
	Schemas   []string
}

// TableRow is one base table with its storage statistics.
type TableRow struct {
	Schema        string // empty for non-schema-based dialects
	Name          string
	Kind          string
	Engine        string
	Comment       string
	Charset       string
	Collation     string
	RowFormat     string
	Rows          int64
	AvgRowLength  int64
	DataLength    int64
	IndexLength   int64
	AutoIncrement int64
}

// ColumnRow is one column ordered by ordinal position. ColumnType carries the
// dialect-normalized full type (e.g. varchar(255)) merged from the raw type
// and the split length/precision/scale catalog fields.
type ColumnRow struct {
	OrdinalPosition int
	Name            string
	DefaultValue    *string
	Nullable        bool
	DataType        string
	ColumnType      string
	MaxLength       *int64
	Precision       *int64
	Scale           *int64
	Charset         string
	Collation       string
	Key             string
	Extra           string
	Comment         string
}

// IndexColumnRow is one (index, member column) pair. A composite index yields
// one row per member, ordered by index name then SeqInIndex; callers must not
// assume one row per index.
type IndexColumnRow struct {
	IndexName  string
	Type       string
	Unique     bool
	Primary    bool
	ColumnName string
	SeqInIndex int
	SubPart    *int64
	Comment    string
}
