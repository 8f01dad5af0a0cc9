package enrich

import (
	"testing"

	"skinfeed/internal/event"
)

type fixedRate float64

func (r fixedRate) EUR() float64 { return float64(r) }

func fp(v float64) *float64 { return &v }

func TestEnrich_Listed(t *testing.T) {
	e := NewEnricher(fixedRate(0.92))

	ev := &event.MarketEvent{
		Kind:              event.KindListed,
		PriceUSD:          0.330,
		SuggestedPriceUSD: 0.350,
		FloatValue:        fp(0.06),
	}
	e.Enrich(ev)

	if ev.PriceEUR != 0.304 {
		t.Errorf("PriceEUR = %v, want 0.304", ev.PriceEUR)
	}
	if ev.SuggestedPriceEUR != 0.322 {
		t.Errorf("SuggestedPriceEUR = %v, want 0.322", ev.SuggestedPriceEUR)
	}
	if ev.Wear != event.WearFactoryNew {
		t.Errorf("Wear = %q, want %q", ev.Wear, event.WearFactoryNew)
	}
}

func TestEnrich_PriceChanged(t *testing.T) {
	e := NewEnricher(fixedRate(0.92))

	ev := &event.MarketEvent{
		Kind:        event.KindPriceChanged,
		OldPriceUSD: 0.330,
		NewPriceUSD: 0.320,
	}
	e.Enrich(ev)

	if ev.OldPriceEUR != 0.304 {
		t.Errorf("OldPriceEUR = %v, want 0.304", ev.OldPriceEUR)
	}
	if ev.NewPriceEUR != 0.294 {
		t.Errorf("NewPriceEUR = %v, want 0.294", ev.NewPriceEUR)
	}
	if ev.PriceEUR != ev.NewPriceEUR {
		t.Errorf("PriceEUR = %v, want new price %v", ev.PriceEUR, ev.NewPriceEUR)
	}
	if ev.Wear != event.WearUnknown {
		t.Errorf("Wear = %q, want %q for missing float", ev.Wear, event.WearUnknown)
	}
}

func TestEnrich_Deterministic(t *testing.T) {
	e := NewEnricher(fixedRate(0.92))

	a := &event.MarketEvent{Kind: event.KindListed, PriceUSD: 12.345, FloatValue: fp(0.37)}
	b := &event.MarketEvent{Kind: event.KindListed, PriceUSD: 12.345, FloatValue: fp(0.37)}
	e.Enrich(a)
	e.Enrich(b)

	if a.PriceEUR != b.PriceEUR || a.Wear != b.Wear {
		t.Errorf("enrichment not deterministic: %v/%q vs %v/%q", a.PriceEUR, a.Wear, b.PriceEUR, b.Wear)
	}
}
