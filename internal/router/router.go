package router

import (
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"skinfeed/internal/connection"
	"skinfeed/internal/event"
)

// The marketplace quotes prices as integer thousandths of a USD.
const priceRawScale = 1000.0

// Router parses raw frames for a single event kind.
type Router struct {
	kind   event.Kind
	logger *slog.Logger

	mu          sync.RWMutex
	parsed      int64
	parseErrors int64
}

// NewRouter creates a Router for the given kind.
func NewRouter(kind event.Kind, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{kind: kind, logger: logger}
}

// Stats returns current statistics.
func (r *Router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RouterStats{FramesParsed: r.parsed, ParseErrors: r.parseErrors}
}

// Parse converts a raw frame into a typed MarketEvent. On failure it
// returns a *ParseError; the frame is dropped by the caller and the stream
// continues.
func (r *Router) Parse(frame connection.RawFrame) (*event.MarketEvent, error) {
	ev, err := r.parse(frame)

	r.mu.Lock()
	if err != nil {
		r.parseErrors++
	} else {
		r.parsed++
	}
	r.mu.Unlock()

	return ev, err
}

func (r *Router) parse(frame connection.RawFrame) (*event.MarketEvent, error) {
	var wire itemWire
	if err := json.Unmarshal(frame.Payload, &wire); err != nil {
		return nil, &ParseError{Field: "payload", Reason: "is not a JSON object: " + err.Error()}
	}

	itemID := wire.ID.String()
	if itemID == "" || itemID == "0" {
		return nil, &ParseError{Field: "id", Reason: "is missing or empty"}
	}
	if wire.Name == "" {
		return nil, &ParseError{Field: "name", Reason: "is missing or empty"}
	}
	if wire.FloatValue != nil && math.IsNaN(*wire.FloatValue) {
		return nil, &ParseError{Field: "float_value", Reason: "is not a number"}
	}
	if wire.SuggestedPrice < 0 {
		return nil, &ParseError{Field: "suggested_price", Reason: "is negative"}
	}

	ev := &event.MarketEvent{
		Kind:              r.kind,
		ItemID:            itemID,
		ItemName:          wire.Name,
		Timestamp:         eventTimestamp(wire.Timestamp, frame.ReceivedAt),
		ReceivedAt:        frame.ReceivedAt,
		FloatValue:        wire.FloatValue,
		SkinID:            wire.SkinID,
		AssetID:           wire.AssetID.String(),
		BotSteamID:        wire.BotSteamID,
		SuggestedPriceUSD: rawToUSD(wire.SuggestedPrice),
	}

	switch r.kind {
	case event.KindListed, event.KindDelistedSold:
		if wire.Price == nil {
			return nil, &ParseError{Field: "price", Reason: "is missing"}
		}
		if *wire.Price < 0 {
			return nil, &ParseError{Field: "price", Reason: "is negative"}
		}
		ev.PriceRaw = *wire.Price
		ev.PriceUSD = rawToUSD(*wire.Price)

		if r.kind == event.KindListed {
			ev.CollectionName = wire.CollectionName
		} else {
			ev.Reason = delistReason(wire.Reason)
		}

	case event.KindPriceChanged:
		if wire.Price == nil {
			return nil, &ParseError{Field: "price", Reason: "is missing"}
		}
		if *wire.Price < 0 {
			return nil, &ParseError{Field: "price", Reason: "is negative"}
		}
		if wire.OldPrice == nil {
			return nil, &ParseError{Field: "old_price", Reason: "is missing"}
		}
		if *wire.OldPrice < 0 {
			return nil, &ParseError{Field: "old_price", Reason: "is negative"}
		}

		ev.PriceRaw = *wire.Price
		ev.OldPriceRaw = *wire.OldPrice
		ev.OldPriceUSD = rawToUSD(*wire.OldPrice)
		ev.NewPriceUSD = rawToUSD(*wire.Price)
		ev.PriceChangeUSD = round3(ev.NewPriceUSD - ev.OldPriceUSD)
		ev.PriceChangePercent = changePercent(ev.OldPriceUSD, ev.NewPriceUSD)
	}

	return ev, nil
}

// eventTimestamp prefers the wire timestamp; frames without one use the
// local arrival time.
func eventTimestamp(ts *int64, receivedAt time.Time) time.Time {
	if ts != nil && *ts > 0 {
		return time.Unix(*ts, 0).UTC()
	}
	return receivedAt.UTC()
}

// delistReason normalizes the optional removal reason.
func delistReason(reason string) string {
	switch reason {
	case "sold", "delisted":
		return reason
	default:
		// The feed rarely states why an item disappeared.
		return "Unknown"
	}
}

// changePercent returns the relative price change in percent, rounded to 2
// decimals, or nil when the old price was zero (the change is undefined).
func changePercent(oldUSD, newUSD float64) *float64 {
	if oldUSD == 0 {
		return nil
	}
	pct := round2((newUSD - oldUSD) / oldUSD * 100)
	return &pct
}

func rawToUSD(raw int64) float64 {
	return round3(float64(raw) / priceRawScale)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
