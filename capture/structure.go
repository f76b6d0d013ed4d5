package capture

import (
	"context"

	"github.com/schemavault/schemavault"
)

// NotCapturedMarker is placed in DatabaseStructure.Error when a version has
// no snapshot. A version legitimately may never have had a datasource bound
// to it, so this is reported in-band, not as a Go error.
const NotCapturedMarker = "version has no captured snapshot"

// VersionSnapshot returns the version's snapshot, or nil when the version
// was never captured.
func (s *Service) VersionSnapshot(ctx context.Context, versionID string) (*schemavault.Snapshot, error) {
	return s.store.SnapshotByVersion(ctx, versionID)
}

// VersionTables returns the version's tables ordered by table name.
func (s *Service) VersionTables(ctx context.Context, versionID string) ([]schemavault.Table, error) {
	return s.store.TablesByVersion(ctx, versionID)
}

// CompleteStructure reassembles the full nested structure of a version: the
// snapshot, its tables, and for each table its columns by ordinal position
// and its indexes by name.
func (s *Service) CompleteStructure(ctx context.Context, versionID string) (*schemavault.DatabaseStructure, error) {
	result := &schemavault.DatabaseStructure{VersionID: versionID}

	snap, err := s.store.SnapshotByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		result.Error = NotCapturedMarker
		return result, nil
	}
	result.Database = snap

	tables, err := s.store.TablesByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	for _, t := range tables {
		columns, err := s.store.ColumnsByTable(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		indexes, err := s.store.IndexesByTable(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		result.Tables = append(result.Tables, schemavault.TableStructure{
			Table:   t,
			Columns: columns,
			Indexes: indexes,
		})
	}

	return result, nil
}
