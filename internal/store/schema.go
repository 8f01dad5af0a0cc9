package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements are idempotent so every instance can run them at
// startup regardless of which one got there first.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS listed_items (
		item_id              TEXT             NOT NULL,
		ts                   TIMESTAMPTZ      NOT NULL,
		received_at          TIMESTAMPTZ      NOT NULL,
		item_name            TEXT             NOT NULL,
		price_usd            DOUBLE PRECISION NOT NULL,
		price_eur            DOUBLE PRECISION NOT NULL,
		suggested_price_usd  DOUBLE PRECISION NOT NULL DEFAULT 0,
		suggested_price_eur  DOUBLE PRECISION NOT NULL DEFAULT 0,
		float_value          DOUBLE PRECISION,
		wear                 TEXT             NOT NULL DEFAULT 'Unknown',
		skin_id              BIGINT           NOT NULL DEFAULT 0,
		collection_name      TEXT             NOT NULL DEFAULT '',
		asset_id             TEXT             NOT NULL DEFAULT '',
		bot_steam_id         TEXT             NOT NULL DEFAULT '',
		PRIMARY KEY (item_id, ts)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listed_ts ON listed_items (ts)`,
	`CREATE INDEX IF NOT EXISTS idx_listed_name ON listed_items (item_name)`,
	`CREATE INDEX IF NOT EXISTS idx_listed_price ON listed_items (price_usd)`,
	`CREATE INDEX IF NOT EXISTS idx_listed_wear ON listed_items (wear)`,

	`CREATE TABLE IF NOT EXISTS price_changed_items (
		item_id               TEXT             NOT NULL,
		ts                    TIMESTAMPTZ      NOT NULL,
		received_at           TIMESTAMPTZ      NOT NULL,
		item_name             TEXT             NOT NULL,
		old_price_usd         DOUBLE PRECISION NOT NULL,
		new_price_usd         DOUBLE PRECISION NOT NULL,
		old_price_eur         DOUBLE PRECISION NOT NULL,
		new_price_eur         DOUBLE PRECISION NOT NULL,
		price_change_usd      DOUBLE PRECISION NOT NULL,
		price_change_percent  DOUBLE PRECISION,
		suggested_price_usd   DOUBLE PRECISION NOT NULL DEFAULT 0,
		suggested_price_eur   DOUBLE PRECISION NOT NULL DEFAULT 0,
		float_value           DOUBLE PRECISION,
		wear                  TEXT             NOT NULL DEFAULT 'Unknown',
		skin_id               BIGINT           NOT NULL DEFAULT 0,
		asset_id              TEXT             NOT NULL DEFAULT '',
		bot_steam_id          TEXT             NOT NULL DEFAULT '',
		PRIMARY KEY (item_id, ts)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_price_changed_ts ON price_changed_items (ts)`,
	`CREATE INDEX IF NOT EXISTS idx_price_changed_name ON price_changed_items (item_name)`,
	`CREATE INDEX IF NOT EXISTS idx_price_changed_price ON price_changed_items (new_price_usd)`,
	`CREATE INDEX IF NOT EXISTS idx_price_changed_wear ON price_changed_items (wear)`,
	`CREATE INDEX IF NOT EXISTS idx_price_changed_percent ON price_changed_items (price_change_percent)`,

	`CREATE TABLE IF NOT EXISTS delisted_sold_items (
		item_id              TEXT             NOT NULL,
		ts                   TIMESTAMPTZ      NOT NULL,
		received_at          TIMESTAMPTZ      NOT NULL,
		item_name            TEXT             NOT NULL,
		price_usd            DOUBLE PRECISION NOT NULL,
		price_eur            DOUBLE PRECISION NOT NULL,
		suggested_price_usd  DOUBLE PRECISION NOT NULL DEFAULT 0,
		suggested_price_eur  DOUBLE PRECISION NOT NULL DEFAULT 0,
		reason               TEXT             NOT NULL DEFAULT 'Unknown',
		float_value          DOUBLE PRECISION,
		wear                 TEXT             NOT NULL DEFAULT 'Unknown',
		skin_id              BIGINT           NOT NULL DEFAULT 0,
		asset_id             TEXT             NOT NULL DEFAULT '',
		bot_steam_id         TEXT             NOT NULL DEFAULT '',
		PRIMARY KEY (item_id, ts)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_delisted_ts ON delisted_sold_items (ts)`,
	`CREATE INDEX IF NOT EXISTS idx_delisted_name ON delisted_sold_items (item_name)`,
	`CREATE INDEX IF NOT EXISTS idx_delisted_price ON delisted_sold_items (price_usd)`,
	`CREATE INDEX IF NOT EXISTS idx_delisted_wear ON delisted_sold_items (wear)`,
	`CREATE INDEX IF NOT EXISTS idx_delisted_reason ON delisted_sold_items (reason)`,
}

// EnsureSchema creates the event tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
