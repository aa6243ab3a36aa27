// Package clickhouse persists the append-only journal of block events the
// ingestion pipeline has applied or rolled back.
package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Metrics records the outcome and latency of journal queries.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Repository owns the native-protocol connection pool to the journal
// database.
type Repository struct {
	conn    clickhouse.Conn
	metrics Metrics
}

// NewRepository opens a connection pool for the given DSN. The DSN is parsed
// eagerly; connectivity is only established on first use, use Ping to check
// it up front.
func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, metrics: metrics}, nil
}

// Ping verifies the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

func (r *Repository) Close() error {
	return r.conn.Close()
}
