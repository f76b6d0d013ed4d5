// Package capture orchestrates extraction, persists each run as an immutable
// version, and answers structure and comparison queries over stored versions.
package capture

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schemavault/schemavault"
	"github.com/schemavault/schemavault/extract"
	"github.com/schemavault/schemavault/store"
)

// Service is the snapshot capture and comparison service. It holds no
// process-wide cache; captures for different versions may run concurrently
// against different datasources.
type Service struct {
	store  store.RecordStore
	cfg    *schemavault.Config
	logger *zap.Logger
}

// NewService creates a capture service over the given record store.
func NewService(st store.RecordStore, cfg *schemavault.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, cfg: cfg, logger: logger}
}

// extractedSchema is the in-memory result of one extraction pass: the
// database defaults plus every table with its raw column and index rows.
type extractedSchema struct {
	info   extract.DatabaseInfo
	tables []extractedTable
}

type extractedTable struct {
	row     extract.TableRow
	columns []extract.ColumnRow
	indexes []extract.IndexColumnRow
}

// Capture records the full structural shape of the datasource under the
// given version id. The operation is all-or-nothing: extraction happens over
// one scoped connection, persistence happens inside one store transaction
// that first purges any rows a prior capture left under the same version.
func (s *Service) Capture(ctx context.Context, versionID string, ds schemavault.Datasource, userID string) error {
	log := s.logger.With(
		zap.String("capture_id", uuid.NewString()),
		zap.String("version_id", versionID),
		zap.String("datasource", ds.Name),
		zap.String("dialect", ds.Dialect.String()),
	)

	extracted, err := s.extractSchema(ctx, ds, log)
	if err != nil {
		log.Error("capture aborted during extraction", zap.Error(err))
		return err
	}

	if err := s.persistSchema(ctx, versionID, userID, extracted); err != nil {
		log.Error("capture aborted during persistence", zap.Error(err))
		return err
	}

	log.Info("capture complete",
		zap.String("database", extracted.info.Name),
		zap.Int("tables", len(extracted.tables)))

	return nil
}

// extractSchema runs the whole catalog extraction over one connection,
// released on every exit path. Per-table column/index query failures are
// logged and tolerated as empty sets so restricted catalog permissions do
// not abort the whole capture; database-info and table-listing failures do.
func (s *Service) extractSchema(ctx context.Context, ds schemavault.Datasource, log *zap.Logger) (*extractedSchema, error) {
	ex, err := extract.New(ds.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := extract.Open(ctx, ex, ds)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	excl := s.cfg.ExclusionsFor(ds.Dialect)

	info, err := ex.DatabaseInfo(ctx, db, ds, excl)
	if err != nil {
		return nil, err
	}

	tableRows, err := ex.TablesStructure(ctx, db, ds, excl)
	if err != nil {
		return nil, err
	}

	result := &extractedSchema{info: info}
	for _, row := range tableRows {
		t := extractedTable{row: row}

		t.columns, err = ex.TableColumns(ctx, db, row.Schema, row.Name)
		if err != nil {
			log.Warn("column extraction failed, capturing table without columns",
				zap.String("table", row.Name), zap.Error(err))
			t.columns = nil
		}

		t.indexes, err = ex.TableIndexes(ctx, db, row.Schema, row.Name)
		if err != nil {
			log.Warn("index extraction failed, capturing table without indexes",
				zap.String("table", row.Name), zap.Error(err))
			t.indexes = nil
		}

		result.tables = append(result.tables, t)
	}

	return result, nil
}

// persistSchema writes one extracted schema as the version's records inside
// a single transaction, replacing whatever a prior capture stored for it.
func (s *Service) persistSchema(ctx context.Context, versionID, userID string, extracted *extractedSchema) error {
	return s.store.WithinTx(ctx, func(w store.RecordWriter) error {
		if err := w.DeleteVersion(ctx, versionID); err != nil {
			return err
		}

		if _, err := w.InsertSnapshot(ctx, &schemavault.Snapshot{
			VersionID:  versionID,
			Database:   extracted.info.Name,
			Charset:    extracted.info.Charset,
			Collation:  extracted.info.Collation,
			CapturedAt: time.Now().UTC(),
			UserID:     userID,
		}); err != nil {
			return err
		}

		for _, t := range extracted.tables {
			tableID, err := w.InsertTable(ctx, &schemavault.Table{
				VersionID:     versionID,
				Schema:        t.row.Schema,
				Name:          t.row.Name,
				Comment:       t.row.Comment,
				Kind:          t.row.Kind,
				Engine:        t.row.Engine,
				Charset:       t.row.Charset,
				Collation:     t.row.Collation,
				RowFormat:     t.row.RowFormat,
				Rows:          t.row.Rows,
				AvgRowLength:  t.row.AvgRowLength,
				DataLength:    t.row.DataLength,
				IndexLength:   t.row.IndexLength,
				AutoIncrement: t.row.AutoIncrement,
			})
			if err != nil {
				return err
			}

			for _, c := range t.columns {
				if _, err := w.InsertColumn(ctx, &schemavault.Column{
					TableID:         tableID,
					OrdinalPosition: c.OrdinalPosition,
					Name:            c.Name,
					DefaultValue:    c.DefaultValue,
					Nullable:        c.Nullable,
					DataType:        c.DataType,
					ColumnType:      c.ColumnType,
					MaxLength:       c.MaxLength,
					Precision:       c.Precision,
					Scale:           c.Scale,
					Charset:         c.Charset,
					Collation:       c.Collation,
					Key:             c.Key,
					Extra:           c.Extra,
					Comment:         c.Comment,
				}); err != nil {
					return err
				}
			}

			for _, idx := range GroupIndexRows(tableID, t.indexes) {
				idx := idx
				if _, err := w.InsertIndex(ctx, &idx); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// DatabaseInfo is a live passthrough to the datasource's extractor, for
// callers that need introspection without persisting a version.
func (s *Service) DatabaseInfo(ctx context.Context, ds schemavault.Datasource) (extract.DatabaseInfo, error) {
	var info extract.DatabaseInfo
	err := s.withConnection(ctx, ds, func(ex extract.Extractor, db *sql.DB) error {
		var err error
		info, err = ex.DatabaseInfo(ctx, db, ds, s.cfg.ExclusionsFor(ds.Dialect))
		return err
	})
	return info, err
}

// TablesStructure is a live passthrough listing base tables.
func (s *Service) TablesStructure(ctx context.Context, ds schemavault.Datasource) ([]extract.TableRow, error) {
	var tables []extract.TableRow
	err := s.withConnection(ctx, ds, func(ex extract.Extractor, db *sql.DB) error {
		var err error
		tables, err = ex.TablesStructure(ctx, db, ds, s.cfg.ExclusionsFor(ds.Dialect))
		return err
	})
	return tables, err
}

// TableColumns is a live passthrough listing one table's columns.
func (s *Service) TableColumns(ctx context.Context, ds schemavault.Datasource, schema, table string) ([]extract.ColumnRow, error) {
	var columns []extract.ColumnRow
	err := s.withConnection(ctx, ds, func(ex extract.Extractor, db *sql.DB) error {
		var err error
		columns, err = ex.TableColumns(ctx, db, schema, table)
		return err
	})
	return columns, err
}

// TableIndexes is a live passthrough listing one table's flat index rows.
func (s *Service) TableIndexes(ctx context.Context, ds schemavault.Datasource, schema, table string) ([]extract.IndexColumnRow, error) {
	var rows []extract.IndexColumnRow
	err := s.withConnection(ctx, ds, func(ex extract.Extractor, db *sql.DB) error {
		var err error
		rows, err = ex.TableIndexes(ctx, db, schema, table)
		return err
	})
	return rows, err
}

// withConnection resolves the extractor and runs fn over a scoped
// connection, closed on every exit path.
func (s *Service) withConnection(ctx context.Context, ds schemavault.Datasource, fn func(extract.Extractor, *sql.DB) error) error {
	ex, err := extract.New(ds.Dialect)
	if err != nil {
		return err
	}

	db, err := extract.Open(ctx, ex, ds)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ex, db)
}

// IsConnectionError reports whether the capture failure was caused by
// connectivity rather than a catalog query, so callers can distinguish the
// two without parsing messages.
func IsConnectionError(err error) bool {
	return errors.Is(err, schemavault.ErrConnectionFailed)
}
