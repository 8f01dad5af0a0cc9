package enrich

import (
	"math"

	"skinfeed/internal/event"
)

// Rater supplies the current USD to EUR conversion rate. *RateSource
// implements this.
type Rater interface {
	EUR() float64
}

// Enricher derives the EUR prices and the wear band for an event.
type Enricher struct {
	rates Rater
}

// NewEnricher creates an Enricher reading rates from the given source.
func NewEnricher(rates Rater) *Enricher {
	return &Enricher{rates: rates}
}

// Enrich fills in the derived fields of ev in place. It never fails: a
// missing float value yields the unknown wear band and the EUR fields
// follow whatever rate the source currently holds.
func (e *Enricher) Enrich(ev *event.MarketEvent) {
	rate := e.rates.EUR()

	switch ev.Kind {
	case event.KindPriceChanged:
		ev.OldPriceEUR = toEUR(ev.OldPriceUSD, rate)
		ev.NewPriceEUR = toEUR(ev.NewPriceUSD, rate)
		ev.PriceEUR = ev.NewPriceEUR
	default:
		ev.PriceEUR = toEUR(ev.PriceUSD, rate)
	}
	if ev.SuggestedPriceUSD > 0 {
		ev.SuggestedPriceEUR = toEUR(ev.SuggestedPriceUSD, rate)
	}

	ev.Wear = event.WearFromFloat(ev.FloatValue)
}

func toEUR(usd, rate float64) float64 {
	return math.Round(usd*rate*1000) / 1000
}
