// Package store persists captured snapshot records. The capture service
// treats it as a generic key-indexed table service over four record kinds:
// snapshots, tables, columns, and index rows.
package store

import (
	"context"

	"github.com/schemavault/schemavault"
)

// RecordStore is the durable snapshot table service consumed by the capture
// service. Inserts preserve insertion order for ordinal-sensitive kinds
// (columns), and read-backs return stable orderings.
type RecordStore interface {
	// WithinTx runs fn inside one transaction so a whole capture is
	// all-or-nothing: a mid-capture failure leaves no partial version
	// visible to readers.
	WithinTx(ctx context.Context, fn func(RecordWriter) error) error

	// SnapshotByVersion returns nil without error when the version was
	// never captured.
	SnapshotByVersion(ctx context.Context, versionID string) (*schemavault.Snapshot, error)
	// TablesByVersion returns the version's tables ordered by schema then
	// table name.
	TablesByVersion(ctx context.Context, versionID string) ([]schemavault.Table, error)
	// ColumnsByTable returns the table's columns ordered by ordinal
	// position.
	ColumnsByTable(ctx context.Context, tableID int64) ([]schemavault.Column, error)
	// IndexesByTable returns the table's indexes ordered by index name.
	IndexesByTable(ctx context.Context, tableID int64) ([]schemavault.Index, error)

	Close() error
}

// RecordWriter is the write surface available inside a transaction.
type RecordWriter interface {
	// DeleteVersion purges every record of a version. Columns and index
	// rows cannot be filtered by version id directly; the implementation
	// resolves the version's table ids first and deletes children by that
	// id set, then the tables, then the snapshot.
	DeleteVersion(ctx context.Context, versionID string) error
	InsertSnapshot(ctx context.Context, s *schemavault.Snapshot) (int64, error)
	InsertTable(ctx context.Context, t *schemavault.Table) (int64, error)
	InsertColumn(ctx context.Context, c *schemavault.Column) (int64, error)
	InsertIndex(ctx context.Context, i *schemavault.Index) (int64, error)
}
