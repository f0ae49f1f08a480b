package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// EventsResult summarizes an event sync.
type EventsResult struct {
	Crawled   int                `json:"crawled"`
	NewEvents []event.Event      `json:"new_events"`
	Stats     storage.BatchStats `json:"stats"`
}

// SyncEvents crawls the event list and stores events not seen before. New
// events are inserted oldest first so ids follow event dates.
func (p *Pipeline) SyncEvents(ctx context.Context, runID string) (*EventsResult, error) {
	log := runLogger(runID, "events")

	latest, err := p.store.LatestEventLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading latest events: %w", err)
	}
	stored, err := p.store.EventLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored events: %w", err)
	}

	crawled, err := p.crawler.Synchronize(ctx, p.opts.BaseURL, latest)
	if err != nil {
		return nil, fmt.Errorf("crawling events: %w", err)
	}
	diff := event.Diff(stored, crawled)
	res := &EventsResult{Crawled: len(crawled), NewEvents: diff.NewEvents}

	log.Info("events crawled", logger.Fields{
		"crawled": len(crawled),
		"known":   diff.Known,
		"new":     len(diff.NewEvents),
	})
	if len(diff.NewEvents) == 0 || p.opts.DryRun {
		return res, nil
	}

	oldestFirst := slices.Clone(diff.NewEvents)
	slices.Reverse(oldestFirst)
	res.Stats, err = p.store.Batch(ctx, func(tx *storage.Tx) error {
		for _, evt := range oldestFirst {
			if _, err := tx.InsertIfAbsent(ctx, evt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing events: %w", err)
	}

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, diff.NewEvents); err != nil {
			log.Warn("notification failed", logger.Fields{"error": err.Error()})
		}
	}
	return res, nil
}
