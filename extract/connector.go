package extract

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/schemavault/schemavault"
)

// ConnectionPoolSettings defines database connection pool configuration.
type ConnectionPoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolSettings returns the pool configuration used for capture
// connections. One capture uses one connection sequentially, so the pool is
// kept small.
func DefaultPoolSettings() ConnectionPoolSettings {
	return ConnectionPoolSettings{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Open builds the dialect-specific connection string for the datasource,
// opens the connection, and verifies it with a ping. Failures wrap
// ErrConnectionFailed with the underlying cause so callers can tell
// connectivity failures from query failures. The caller owns the returned
// handle and must close it on every exit path.
func Open(ctx context.Context, e Extractor, ds schemavault.Datasource) (*sql.DB, error) {
	db, err := sql.Open(e.DriverName(), e.ConnectionString(ds))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemavault.ErrConnectionFailed, err)
	}

	settings := DefaultPoolSettings()
	db.SetMaxOpenConns(settings.MaxOpenConns)
	db.SetMaxIdleConns(settings.MaxIdleConns)
	db.SetConnMaxLifetime(settings.ConnMaxLifetime)

	pingCtx := ctx
	if ds.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, ds.ConnectTimeout)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", schemavault.ErrConnectionFailed, err)
	}

	return db, nil
}
