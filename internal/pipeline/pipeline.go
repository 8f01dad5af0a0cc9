// Package pipeline drives frames from the connection through parsing,
// enrichment, deduplication and persistence.
//
// A single consumer preserves arrival order per channel. A frame that fails
// to parse or repeats a recent identity is dropped and counted; the stream
// keeps going. The loop drains until the frame channel closes, so stopping
// the connection manager first lets buffered frames reach the store.
package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"skinfeed/internal/connection"
	"skinfeed/internal/dedup"
	"skinfeed/internal/enrich"
	"skinfeed/internal/event"
	"skinfeed/internal/router"
	"skinfeed/internal/store"
)

// Persister is the slice of store.Writer the pipeline needs.
type Persister interface {
	Persist(ctx context.Context, ev *event.MarketEvent) (store.PersistResult, error)
}

// PipelineStats contains runtime statistics.
type PipelineStats struct {
	Accepted       int64
	ParseDrops     int64
	DuplicateDrops int64
	PersistDrops   int64
}

// Pipeline consumes raw frames and persists the surviving events.
type Pipeline struct {
	frames   <-chan connection.RawFrame
	router   *router.Router
	enricher *enrich.Enricher
	deduper  *dedup.Deduper
	store    Persister
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	stats PipelineStats
}

// New creates a Pipeline over the given frame channel.
func New(
	frames <-chan connection.RawFrame,
	r *router.Router,
	e *enrich.Enricher,
	d *dedup.Deduper,
	s Persister,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		frames:   frames,
		router:   r,
		enricher: e,
		deduper:  d,
		store:    s,
		logger:   logger,
	}
}

// Start begins consuming frames. Shutdown is driven by the producer closing
// the frame channel, not by ctx: the consumer must outlive the caller's
// cancellation so buffered frames still reach the store. The internal
// context is cancelled only by Stop when the drain deadline passes.
func (p *Pipeline) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.wg.Add(1)
	go p.run()

	p.logger.Info("pipeline started")
	return nil
}

// Stop waits for the consumer to drain. The frame channel must be closed by
// the producer first; if ctx expires before the drain finishes the loop is
// aborted.
func (p *Pipeline) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("pipeline stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("pipeline drain timed out, aborting")
		if p.cancel != nil {
			p.cancel()
		}
		return ctx.Err()
	}
}

// Stats returns current statistics.
func (p *Pipeline) Stats() PipelineStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case frame, ok := <-p.frames:
			if !ok {
				return
			}
			p.handle(frame)
		}
	}
}

func (p *Pipeline) handle(frame connection.RawFrame) {
	ev, err := p.router.Parse(frame)
	if err != nil {
		p.count(func(s *PipelineStats) { s.ParseDrops++ })
		p.logger.Warn("dropping malformed frame", "channel", frame.Channel, "error", err)
		return
	}

	p.enricher.Enrich(ev)

	if !p.deduper.Accept(ev) {
		p.count(func(s *PipelineStats) { s.DuplicateDrops++ })
		p.logger.Debug("dropping duplicate event",
			"kind", ev.Kind, "item_id", ev.ItemID, "ts", ev.Timestamp)
		return
	}

	res, err := p.store.Persist(p.ctx, ev)
	if err != nil {
		p.count(func(s *PipelineStats) { s.PersistDrops++ })
		p.logger.Error("dropping unpersistable event",
			"kind", ev.Kind, "item_id", ev.ItemID, "error", err)
		return
	}

	p.count(func(s *PipelineStats) { s.Accepted++ })
	p.logger.Debug("event persisted",
		"kind", ev.Kind,
		"item_id", ev.ItemID,
		"item_name", ev.ItemName,
		"inserted", res.Inserted,
	)
}

func (p *Pipeline) count(f func(*PipelineStats)) {
	p.mu.Lock()
	f(&p.stats)
	p.mu.Unlock()
}
