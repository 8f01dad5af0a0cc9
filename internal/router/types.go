package router

import (
	"encoding/json"
	"fmt"
)

// ParseError reports a malformed or out-of-range field in a frame payload.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: field %q %s", e.Field, e.Reason)
}

// RouterStats contains runtime statistics.
type RouterStats struct {
	FramesParsed int64
	ParseErrors  int64
}

// flexID is an identifier the feed serializes as either a JSON number or a
// JSON string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

// itemWire is the wire shape of a frame payload. All three channels share
// one schema; kind-specific fields are simply absent on the others.
type itemWire struct {
	ID             flexID   `json:"id"`
	Name           string   `json:"name"`
	Price          *int64   `json:"price"`           // thousandths of a USD
	OldPrice       *int64   `json:"old_price"`       // price_changed only
	SuggestedPrice int64    `json:"suggested_price"` // thousandths of a USD
	FloatValue     *float64 `json:"float_value"`
	SkinID         int64    `json:"skin_id"`
	CollectionName string   `json:"collection_name"`
	AssetID        flexID   `json:"asset_id"`
	BotSteamID     string   `json:"bot_steam_id"`
	Reason         string   `json:"reason"` // delisted_or_sold only, often absent
	Timestamp      *int64   `json:"ts"`     // unix seconds, often absent
}
