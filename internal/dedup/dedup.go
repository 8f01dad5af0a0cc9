// Package dedup suppresses replayed events within a sliding time window.
//
// Reconnects replay recent frames, so the same event can arrive more than
// once. An event is identified by its kind, item id and timestamp; a second
// arrival inside the window is dropped before it reaches the store.
package dedup

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"skinfeed/internal/event"
)

// DeduperStats contains runtime statistics.
type DeduperStats struct {
	Accepted   int64
	Duplicates int64
}

// Deduper remembers recently seen event identities for a fixed window.
type Deduper struct {
	seen *cache.Cache

	mu         sync.Mutex
	accepted   int64
	duplicates int64
}

// NewDeduper creates a Deduper with the given suppression window.
func NewDeduper(window time.Duration) *Deduper {
	return &Deduper{
		seen: cache.New(window, window/2),
	}
}

// Accept reports whether ev is new. The first call for an identity returns
// true and records it; later calls within the window return false.
func (d *Deduper) Accept(ev *event.MarketEvent) bool {
	key := identityKey(ev)

	// Add is atomic: it fails when the key is already present, so two
	// arrivals of the same event cannot both pass.
	err := d.seen.Add(key, struct{}{}, cache.DefaultExpiration)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.duplicates++
		return false
	}
	d.accepted++
	return true
}

// Stats returns current statistics.
func (d *Deduper) Stats() DeduperStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DeduperStats{Accepted: d.accepted, Duplicates: d.duplicates}
}

// Len returns the number of identities currently remembered.
func (d *Deduper) Len() int {
	return d.seen.ItemCount()
}

func identityKey(ev *event.MarketEvent) string {
	return fmt.Sprintf("%s|%s|%d", ev.Kind, ev.ItemID, ev.Timestamp.UnixNano())
}
