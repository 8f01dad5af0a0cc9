// Package event defines the canonical typed records produced by the
// ingestion pipeline.
//
// A MarketEvent is one of three kinds (listed, price_changed,
// delisted_sold), decoded once at the router boundary. Downstream stages
// (enrichment, dedup, persistence) operate only on this type; raw frame
// payloads never leak past the router.
package event
