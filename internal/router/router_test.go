package router

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"skinfeed/internal/connection"
	"skinfeed/internal/event"
)

func frame(t *testing.T, payload string) connection.RawFrame {
	t.Helper()
	return connection.RawFrame{
		Channel:    "listed",
		Payload:    json.RawMessage(payload),
		ReceivedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestParse_Listed(t *testing.T) {
	r := NewRouter(event.KindListed, nil)

	ev, err := r.Parse(frame(t, `{
		"id": 6237035,
		"name": "AK-47 | Redline (Factory New)",
		"price": 330,
		"suggested_price": 350,
		"float_value": 0.06,
		"skin_id": 777,
		"collection_name": "The Huntsman Collection",
		"asset_id": "40291545",
		"bot_steam_id": "7656119",
		"ts": 1748779200
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ev.Kind != event.KindListed {
		t.Errorf("Kind = %s, want listed", ev.Kind)
	}
	if ev.ItemID != "6237035" {
		t.Errorf("ItemID = %q, want 6237035", ev.ItemID)
	}
	if ev.PriceUSD != 0.330 {
		t.Errorf("PriceUSD = %v, want 0.330", ev.PriceUSD)
	}
	if ev.SuggestedPriceUSD != 0.350 {
		t.Errorf("SuggestedPriceUSD = %v, want 0.350", ev.SuggestedPriceUSD)
	}
	if ev.FloatValue == nil || *ev.FloatValue != 0.06 {
		t.Errorf("FloatValue = %v, want 0.06", ev.FloatValue)
	}
	if ev.CollectionName != "The Huntsman Collection" {
		t.Errorf("CollectionName = %q", ev.CollectionName)
	}
	if ev.AssetID != "40291545" {
		t.Errorf("AssetID = %q, want 40291545", ev.AssetID)
	}
	if want := time.Unix(1748779200, 0).UTC(); !ev.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %s, want %s", ev.Timestamp, want)
	}
}

func TestParse_TimestampFallsBackToArrival(t *testing.T) {
	r := NewRouter(event.KindListed, nil)

	f := frame(t, `{"id": 1, "name": "item", "price": 100}`)
	ev, err := r.Parse(f)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !ev.Timestamp.Equal(f.ReceivedAt) {
		t.Errorf("Timestamp = %s, want arrival time %s", ev.Timestamp, f.ReceivedAt)
	}
}

func TestParse_PriceChanged(t *testing.T) {
	r := NewRouter(event.KindPriceChanged, nil)

	ev, err := r.Parse(frame(t, `{
		"id": "6237035",
		"name": "AK-47 | Redline (Field-Tested)",
		"old_price": 330,
		"price": 320
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ev.OldPriceUSD != 0.330 {
		t.Errorf("OldPriceUSD = %v, want 0.330", ev.OldPriceUSD)
	}
	if ev.NewPriceUSD != 0.320 {
		t.Errorf("NewPriceUSD = %v, want 0.320", ev.NewPriceUSD)
	}
	if ev.PriceChangeUSD != -0.010 {
		t.Errorf("PriceChangeUSD = %v, want -0.010", ev.PriceChangeUSD)
	}
	if ev.PriceChangePercent == nil {
		t.Fatal("PriceChangePercent = nil, want -3.03")
	}
	if *ev.PriceChangePercent != -3.03 {
		t.Errorf("PriceChangePercent = %v, want -3.03", *ev.PriceChangePercent)
	}
}

func TestParse_PriceChangedFromZero(t *testing.T) {
	r := NewRouter(event.KindPriceChanged, nil)

	ev, err := r.Parse(frame(t, `{"id": 1, "name": "item", "old_price": 0, "price": 5000}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ev.PriceChangePercent != nil {
		t.Errorf("PriceChangePercent = %v, want nil for old price 0", *ev.PriceChangePercent)
	}
	if ev.NewPriceUSD != 5.0 {
		t.Errorf("NewPriceUSD = %v, want 5.0", ev.NewPriceUSD)
	}
}

func TestParse_DelistedSold(t *testing.T) {
	r := NewRouter(event.KindDelistedSold, nil)

	tests := []struct {
		payload string
		reason  string
	}{
		{`{"id": 1, "name": "item", "price": 100, "reason": "sold"}`, "sold"},
		{`{"id": 1, "name": "item", "price": 100, "reason": "delisted"}`, "delisted"},
		{`{"id": 1, "name": "item", "price": 100}`, "Unknown"},
		{`{"id": 1, "name": "item", "price": 100, "reason": "other"}`, "Unknown"},
	}

	for _, tt := range tests {
		ev, err := r.Parse(frame(t, tt.payload))
		if err != nil {
			t.Fatalf("Parse(%s) failed: %v", tt.payload, err)
		}
		if ev.Reason != tt.reason {
			t.Errorf("Reason = %q, want %q for %s", ev.Reason, tt.reason, tt.payload)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		kind    event.Kind
		payload string
		field   string
	}{
		{"not an object", event.KindListed, `[1,2,3]`, "payload"},
		{"missing id", event.KindListed, `{"name": "item", "price": 100}`, "id"},
		{"missing name", event.KindListed, `{"id": 1, "price": 100}`, "name"},
		{"missing price", event.KindListed, `{"id": 1, "name": "item"}`, "price"},
		{"negative price", event.KindListed, `{"id": 1, "name": "item", "price": -5}`, "price"},
		{"missing old price", event.KindPriceChanged, `{"id": 1, "name": "item", "price": 100}`, "old_price"},
		{"negative old price", event.KindPriceChanged, `{"id": 1, "name": "item", "price": 100, "old_price": -1}`, "old_price"},
		{"negative suggested", event.KindListed, `{"id": 1, "name": "item", "price": 100, "suggested_price": -1}`, "suggested_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(tt.kind, nil)
			_, err := r.Parse(frame(t, tt.payload))
			if err == nil {
				t.Fatal("expected ParseError, got nil")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if pe.Field != tt.field {
				t.Errorf("ParseError.Field = %q, want %q", pe.Field, tt.field)
			}
		})
	}
}

func TestParse_StatsCount(t *testing.T) {
	r := NewRouter(event.KindListed, nil)

	r.Parse(frame(t, `{"id": 1, "name": "item", "price": 100}`))
	r.Parse(frame(t, `{"name": "no id"}`))
	r.Parse(frame(t, `{"id": 2, "name": "item", "price": 200}`))

	stats := r.Stats()
	if stats.FramesParsed != 2 {
		t.Errorf("FramesParsed = %d, want 2", stats.FramesParsed)
	}
	if stats.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", stats.ParseErrors)
	}
}
