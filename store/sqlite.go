package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/schemavault/schemavault"
)

// SQLiteStore is the SQLite-backed record store used by the CLI and tests.
type SQLiteStore struct {
	db *sql.DB
}

const bootstrapDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL UNIQUE,
	database_name TEXT NOT NULL,
	charset       TEXT NOT NULL DEFAULT '',
	collation     TEXT NOT NULL DEFAULT '',
	captured_at   TEXT NOT NULL,
	user_id       TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tables (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id     TEXT NOT NULL,
	schema_name    TEXT NOT NULL DEFAULT '',
	table_name     TEXT NOT NULL,
	comment        TEXT NOT NULL DEFAULT '',
	kind           TEXT NOT NULL DEFAULT '',
	engine         TEXT NOT NULL DEFAULT '',
	charset        TEXT NOT NULL DEFAULT '',
	collation      TEXT NOT NULL DEFAULT '',
	row_format     TEXT NOT NULL DEFAULT '',
	row_count      INTEGER NOT NULL DEFAULT 0,
	avg_row_length INTEGER NOT NULL DEFAULT 0,
	data_length    INTEGER NOT NULL DEFAULT 0,
	index_length   INTEGER NOT NULL DEFAULT 0,
	auto_increment INTEGER NOT NULL DEFAULT 0,
	UNIQUE (version_id, schema_name, table_name)
);
CREATE TABLE IF NOT EXISTS columns (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	table_id         INTEGER NOT NULL,
	ordinal_position INTEGER NOT NULL,
	name             TEXT NOT NULL,
	default_value    TEXT,
	nullable         INTEGER NOT NULL DEFAULT 1,
	data_type        TEXT NOT NULL DEFAULT '',
	column_type      TEXT NOT NULL DEFAULT '',
	max_length       INTEGER,
	num_precision    INTEGER,
	num_scale        INTEGER,
	charset          TEXT NOT NULL DEFAULT '',
	collation        TEXT NOT NULL DEFAULT '',
	key_role         TEXT NOT NULL DEFAULT '',
	extra            TEXT NOT NULL DEFAULT '',
	comment          TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_columns_table ON columns (table_id, ordinal_position);
CREATE TABLE IF NOT EXISTS indexes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	table_id     INTEGER NOT NULL,
	name         TEXT NOT NULL,
	type         TEXT NOT NULL DEFAULT '',
	is_unique    INTEGER NOT NULL DEFAULT 0,
	is_primary   INTEGER NOT NULL DEFAULT 0,
	column_list  TEXT NOT NULL DEFAULT '',
	sub_parts    TEXT NOT NULL DEFAULT '',
	comment      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_indexes_table ON indexes (table_id, name);
`

// OpenSQLite opens (and bootstraps) a SQLite record store at path. Use
// ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	// The store is accessed from one capture pipeline at a time; a single
	// connection also keeps :memory: stores coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(bootstrapDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithinTx runs fn inside one SQLite transaction.
func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(RecordWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	if err := fn(&sqliteWriter{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return nil
}

func (s *SQLiteStore) SnapshotByVersion(ctx context.Context, versionID string) (*schemavault.Snapshot, error) {
	const query = `
		SELECT id, version_id, database_name, charset, collation, captured_at, user_id
		FROM snapshots WHERE version_id = ?`

	var (
		snap       schemavault.Snapshot
		capturedAt string
	)
	err := s.db.QueryRowContext(ctx, query, versionID).Scan(&snap.ID, &snap.VersionID,
		&snap.Database, &snap.Charset, &snap.Collation, &capturedAt, &snap.UserID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	snap.CapturedAt, err = time.Parse(time.RFC3339Nano, capturedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return &snap, nil
}

func (s *SQLiteStore) TablesByVersion(ctx context.Context, versionID string) ([]schemavault.Table, error) {
	const query = `
		SELECT id, version_id, schema_name, table_name, comment, kind, engine,
		       charset, collation, row_format, row_count, avg_row_length,
		       data_length, index_length, auto_increment
		FROM tables WHERE version_id = ?
		ORDER BY schema_name, table_name`

	rows, err := s.db.QueryContext(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var tables []schemavault.Table
	for rows.Next() {
		var t schemavault.Table
		if err := rows.Scan(&t.ID, &t.VersionID, &t.Schema, &t.Name, &t.Comment,
			&t.Kind, &t.Engine, &t.Charset, &t.Collation, &t.RowFormat,
			&t.Rows, &t.AvgRowLength, &t.DataLength, &t.IndexLength,
			&t.AutoIncrement); err != nil {
			return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return tables, nil
}

func (s *SQLiteStore) ColumnsByTable(ctx context.Context, tableID int64) ([]schemavault.Column, error) {
	const query = `
		SELECT id, table_id, ordinal_position, name, default_value, nullable,
		       data_type, column_type, max_length, num_precision, num_scale,
		       charset, collation, key_role, extra, comment
		FROM columns WHERE table_id = ?
		ORDER BY ordinal_position`

	rows, err := s.db.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var columns []schemavault.Column
	for rows.Next() {
		var (
			c            schemavault.Column
			defaultValue sql.NullString
			maxLength    sql.NullInt64
			precision    sql.NullInt64
			scale        sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.TableID, &c.OrdinalPosition, &c.Name,
			&defaultValue, &c.Nullable, &c.DataType, &c.ColumnType,
			&maxLength, &precision, &scale, &c.Charset, &c.Collation,
			&c.Key, &c.Extra, &c.Comment); err != nil {
			return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
		}
		if defaultValue.Valid {
			v := defaultValue.String
			c.DefaultValue = &v
		}
		if maxLength.Valid {
			v := maxLength.Int64
			c.MaxLength = &v
		}
		if precision.Valid {
			v := precision.Int64
			c.Precision = &v
		}
		if scale.Valid {
			v := scale.Int64
			c.Scale = &v
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return columns, nil
}

func (s *SQLiteStore) IndexesByTable(ctx context.Context, tableID int64) ([]schemavault.Index, error) {
	const query = `
		SELECT id, table_id, name, type, is_unique, is_primary, column_list,
		       sub_parts, comment
		FROM indexes WHERE table_id = ?
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var indexes []schemavault.Index
	for rows.Next() {
		var (
			idx                schemavault.Index
			columns, subParts  string
		)
		if err := rows.Scan(&idx.ID, &idx.TableID, &idx.Name, &idx.Type,
			&idx.Unique, &idx.Primary, &columns, &subParts, &idx.Comment); err != nil {
			return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
		}
		idx.Columns, err = splitList(columns)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
		}
		idx.SubParts, err = splitIntList(subParts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
		}
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return indexes, nil
}

// sqliteWriter is the transactional write surface.
type sqliteWriter struct {
	tx *sql.Tx
}

func (w *sqliteWriter) DeleteVersion(ctx context.Context, versionID string) error {
	// Columns and index rows carry no version id; resolve the version's
	// table ids first and delete children by that id set.
	rows, err := w.tx.QueryContext(ctx, `SELECT id FROM tables WHERE version_id = ?`, versionID)
	if err != nil {
		return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	var tableIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
		}
		tableIDs = append(tableIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}
	rows.Close()

	for _, tableID := range tableIDs {
		if _, err := w.tx.ExecContext(ctx, `DELETE FROM columns WHERE table_id = ?`, tableID); err != nil {
			return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
		}
		if _, err := w.tx.ExecContext(ctx, `DELETE FROM indexes WHERE table_id = ?`, tableID); err != nil {
			return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
		}
	}

	if _, err := w.tx.ExecContext(ctx, `DELETE FROM tables WHERE version_id = ?`, versionID); err != nil {
		return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}
	if _, err := w.tx.ExecContext(ctx, `DELETE FROM snapshots WHERE version_id = ?`, versionID); err != nil {
		return fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return nil
}

func (w *sqliteWriter) InsertSnapshot(ctx context.Context, s *schemavault.Snapshot) (int64, error) {
	const stmt = `
		INSERT INTO snapshots (version_id, database_name, charset, collation, captured_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := w.tx.ExecContext(ctx, stmt, s.VersionID, s.Database, s.Charset,
		s.Collation, s.CapturedAt.Format(time.RFC3339Nano), s.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return lastID(res)
}

func (w *sqliteWriter) InsertTable(ctx context.Context, t *schemavault.Table) (int64, error) {
	const stmt = `
		INSERT INTO tables (version_id, schema_name, table_name, comment, kind,
			engine, charset, collation, row_format, row_count, avg_row_length,
			data_length, index_length, auto_increment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := w.tx.ExecContext(ctx, stmt, t.VersionID, t.Schema, t.Name,
		t.Comment, t.Kind, t.Engine, t.Charset, t.Collation, t.RowFormat,
		t.Rows, t.AvgRowLength, t.DataLength, t.IndexLength, t.AutoIncrement)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return lastID(res)
}

func (w *sqliteWriter) InsertColumn(ctx context.Context, c *schemavault.Column) (int64, error) {
	const stmt = `
		INSERT INTO columns (table_id, ordinal_position, name, default_value,
			nullable, data_type, column_type, max_length, num_precision,
			num_scale, charset, collation, key_role, extra, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := w.tx.ExecContext(ctx, stmt, c.TableID, c.OrdinalPosition, c.Name,
		nullableStringArg(c.DefaultValue), c.Nullable, c.DataType, c.ColumnType,
		nullableIntArg(c.MaxLength), nullableIntArg(c.Precision),
		nullableIntArg(c.Scale), c.Charset, c.Collation, c.Key, c.Extra, c.Comment)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return lastID(res)
}

func (w *sqliteWriter) InsertIndex(ctx context.Context, i *schemavault.Index) (int64, error) {
	const stmt = `
		INSERT INTO indexes (table_id, name, type, is_unique, is_primary,
			column_list, sub_parts, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := w.tx.ExecContext(ctx, stmt, i.TableID, i.Name, i.Type, i.Unique,
		i.Primary, joinList(i.Columns), joinIntList(i.SubParts), i.Comment)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}

	return lastID(res)
}

func lastID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", schemavault.ErrPersistenceFailed, err)
	}
	return id, nil
}

func nullableStringArg(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableIntArg(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Member-column lists are serialized as ordered JSON arrays. The order is
// load-bearing for composite indexes, and JSON keeps member names containing
// commas or quotes intact through the round trip.
func joinList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func splitList(value string) ([]string, error) {
	if value == "" || value == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(value), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func joinIntList(values []int64) string {
	if len(values) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func splitIntList(value string) ([]int64, error) {
	if value == "" || value == "[]" {
		return nil, nil
	}
	var values []int64
	if err := json.Unmarshal([]byte(value), &values); err != nil {
		return nil, err
	}
	return values, nil
}
