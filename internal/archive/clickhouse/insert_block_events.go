package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// InsertBlockEvents stores journal rows in ClickHouse.
func (r *Repository) InsertBlockEvents(ctx context.Context, rows []BlockEventRow) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_block_events", err, start)
	}()

	if len(rows) == 0 {
		return nil
	}

	const query = `
INSERT INTO block_events (
	height,
	hash,
	prev_hash,
	status,
	tx_count,
	spent_count,
	created_count,
	recorded_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare block events batch: %w", err)
	}

	for _, row := range rows {
		if err = batch.Append(
			row.Height,
			row.Hash,
			row.PrevHash,
			string(row.Status),
			row.TxCount,
			row.SpentCount,
			row.CreatedCount,
			row.RecordedAt,
		); err != nil {
			return fmt.Errorf("append block event: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert block events: %w", err)
	}
	return nil
}
