// Package store persists enriched events to PostgreSQL.
//
// Each event kind has its own table keyed by (item_id, ts). Writes are
// upserts, so replaying an event refreshes the stored row instead of
// failing or duplicating it.
package store
