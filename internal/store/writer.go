package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"skinfeed/internal/event"
)

// WriterConfig controls write retry behavior.
type WriterConfig struct {
	// MaxAttempts is the number of tries per event before it is dropped.
	MaxAttempts int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		MaxAttempts: 3,
		RetryDelay:  250 * time.Millisecond,
	}
}

// PersistResult reports the outcome of a single persisted event.
type PersistResult struct {
	// Inserted is true for a new row, false when an existing row was
	// refreshed by the upsert.
	Inserted bool

	// Attempts is how many tries the write took.
	Attempts int
}

// WriterStats contains runtime statistics.
type WriterStats struct {
	Inserts int64
	Updates int64
	Retries int64
	Errors  int64
}

// rowQuerier is the slice of pgxpool.Pool the writer needs.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Writer upserts enriched events into their per-kind tables.
type Writer struct {
	cfg    WriterConfig
	db     rowQuerier
	logger *slog.Logger

	mu      sync.Mutex
	metrics WriterStats
}

// NewWriter creates a Writer on the given pool.
func NewWriter(cfg WriterConfig, db rowQuerier, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Writer{cfg: cfg, db: db, logger: logger}
}

// Stats returns current metrics.
func (w *Writer) Stats() WriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Persist upserts ev, retrying transient failures up to MaxAttempts.
func (w *Writer) Persist(ctx context.Context, ev *event.MarketEvent) (PersistResult, error) {
	sql, args := upsertFor(ev)

	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		var inserted bool
		err := w.db.QueryRow(ctx, sql, args...).Scan(&inserted)
		if err == nil {
			w.mu.Lock()
			if inserted {
				w.metrics.Inserts++
			} else {
				w.metrics.Updates++
			}
			w.mu.Unlock()
			return PersistResult{Inserted: inserted, Attempts: attempt}, nil
		}
		lastErr = err

		w.mu.Lock()
		w.metrics.Retries++
		w.mu.Unlock()

		w.logger.Warn("persist attempt failed",
			"kind", ev.Kind,
			"item_id", ev.ItemID,
			"attempt", attempt,
			"error", err,
		)

		if attempt < w.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return PersistResult{Attempts: attempt}, ctx.Err()
			case <-time.After(w.cfg.RetryDelay):
			}
		}
	}

	w.mu.Lock()
	w.metrics.Errors++
	w.mu.Unlock()

	return PersistResult{Attempts: w.cfg.MaxAttempts},
		fmt.Errorf("persist %s event %s: %w", ev.Kind, ev.ItemID, lastErr)
}

// upsertFor builds the per-kind upsert. Conflicts on (item_id, ts) refresh
// the row; xmax = 0 distinguishes a fresh insert from an update.
func upsertFor(ev *event.MarketEvent) (string, []any) {
	switch ev.Kind {
	case event.KindPriceChanged:
		return `
			INSERT INTO price_changed_items (
				item_id, ts, received_at, item_name,
				old_price_usd, new_price_usd, old_price_eur, new_price_eur,
				price_change_usd, price_change_percent,
				suggested_price_usd, suggested_price_eur,
				float_value, wear, skin_id, asset_id, bot_steam_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (item_id, ts) DO UPDATE SET
				received_at = EXCLUDED.received_at,
				item_name = EXCLUDED.item_name,
				old_price_usd = EXCLUDED.old_price_usd,
				new_price_usd = EXCLUDED.new_price_usd,
				old_price_eur = EXCLUDED.old_price_eur,
				new_price_eur = EXCLUDED.new_price_eur,
				price_change_usd = EXCLUDED.price_change_usd,
				price_change_percent = EXCLUDED.price_change_percent,
				suggested_price_usd = EXCLUDED.suggested_price_usd,
				suggested_price_eur = EXCLUDED.suggested_price_eur,
				float_value = EXCLUDED.float_value,
				wear = EXCLUDED.wear,
				skin_id = EXCLUDED.skin_id,
				asset_id = EXCLUDED.asset_id,
				bot_steam_id = EXCLUDED.bot_steam_id
			RETURNING (xmax = 0)
		`, []any{
				ev.ItemID, ev.Timestamp, ev.ReceivedAt, ev.ItemName,
				ev.OldPriceUSD, ev.NewPriceUSD, ev.OldPriceEUR, ev.NewPriceEUR,
				ev.PriceChangeUSD, ev.PriceChangePercent,
				ev.SuggestedPriceUSD, ev.SuggestedPriceEUR,
				ev.FloatValue, string(ev.Wear), ev.SkinID, ev.AssetID, ev.BotSteamID,
			}

	case event.KindDelistedSold:
		return `
			INSERT INTO delisted_sold_items (
				item_id, ts, received_at, item_name,
				price_usd, price_eur, suggested_price_usd, suggested_price_eur,
				reason, float_value, wear, skin_id, asset_id, bot_steam_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (item_id, ts) DO UPDATE SET
				received_at = EXCLUDED.received_at,
				item_name = EXCLUDED.item_name,
				price_usd = EXCLUDED.price_usd,
				price_eur = EXCLUDED.price_eur,
				suggested_price_usd = EXCLUDED.suggested_price_usd,
				suggested_price_eur = EXCLUDED.suggested_price_eur,
				reason = EXCLUDED.reason,
				float_value = EXCLUDED.float_value,
				wear = EXCLUDED.wear,
				skin_id = EXCLUDED.skin_id,
				asset_id = EXCLUDED.asset_id,
				bot_steam_id = EXCLUDED.bot_steam_id
			RETURNING (xmax = 0)
		`, []any{
				ev.ItemID, ev.Timestamp, ev.ReceivedAt, ev.ItemName,
				ev.PriceUSD, ev.PriceEUR, ev.SuggestedPriceUSD, ev.SuggestedPriceEUR,
				ev.Reason, ev.FloatValue, string(ev.Wear), ev.SkinID, ev.AssetID, ev.BotSteamID,
			}

	default:
		return `
			INSERT INTO listed_items (
				item_id, ts, received_at, item_name,
				price_usd, price_eur, suggested_price_usd, suggested_price_eur,
				float_value, wear, skin_id, collection_name, asset_id, bot_steam_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (item_id, ts) DO UPDATE SET
				received_at = EXCLUDED.received_at,
				item_name = EXCLUDED.item_name,
				price_usd = EXCLUDED.price_usd,
				price_eur = EXCLUDED.price_eur,
				suggested_price_usd = EXCLUDED.suggested_price_usd,
				suggested_price_eur = EXCLUDED.suggested_price_eur,
				float_value = EXCLUDED.float_value,
				wear = EXCLUDED.wear,
				skin_id = EXCLUDED.skin_id,
				collection_name = EXCLUDED.collection_name,
				asset_id = EXCLUDED.asset_id,
				bot_steam_id = EXCLUDED.bot_steam_id
			RETURNING (xmax = 0)
		`, []any{
				ev.ItemID, ev.Timestamp, ev.ReceivedAt, ev.ItemName,
				ev.PriceUSD, ev.PriceEUR, ev.SuggestedPriceUSD, ev.SuggestedPriceEUR,
				ev.FloatValue, string(ev.Wear), ev.SkinID, ev.CollectionName, ev.AssetID, ev.BotSteamID,
			}
	}
}
