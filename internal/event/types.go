package event

import "time"

// MarketEvent is the canonical record for a single marketplace event.
// Kind indicates which variant this is; kind-specific fields are zero for
// the other variants.
type MarketEvent struct {
	Kind Kind

	// Common fields (all kinds)
	ItemID     string
	ItemName   string
	Timestamp  time.Time // persisted identity is (ItemID, Timestamp)
	ReceivedAt time.Time // local arrival time of the frame
	FloatValue *float64  // nil when the item has no float
	SkinID     int64
	AssetID    string
	BotSteamID string

	// Raw marketplace price in thousandths of a USD.
	PriceRaw          int64
	SuggestedPriceUSD float64

	// Listed / delisted_sold
	PriceUSD       float64
	CollectionName string // listed only

	// price_changed only
	OldPriceRaw        int64
	OldPriceUSD        float64
	NewPriceUSD        float64
	PriceChangeUSD     float64
	PriceChangePercent *float64 // nil when the old price was zero

	// delisted_sold only
	Reason string // "sold", "delisted", or "Unknown"

	// Derived by the enricher.
	PriceEUR          float64
	OldPriceEUR       float64
	NewPriceEUR       float64
	SuggestedPriceEUR float64
	Wear              Wear
}
