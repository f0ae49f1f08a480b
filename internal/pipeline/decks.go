package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/navigator"
	"github.com/pfrederiksen/mtgtop8-sync/internal/review"
	"github.com/pfrederiksen/mtgtop8-sync/internal/scraper"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// PagesResult summarizes a pass over event or deck pages.
type PagesResult struct {
	Pages   int                `json:"pages"`
	Skipped int                `json:"skipped"`
	Stats   storage.BatchStats `json:"stats"`
}

func (r *PagesResult) add(stats storage.BatchStats) {
	if r.Stats.Inserted == nil {
		r.Stats = storage.BatchStats{Inserted: map[storage.TableKind]int{}, Ignored: map[storage.TableKind]int{}}
	}
	for k, n := range stats.Inserted {
		r.Stats.Inserted[k] += n
	}
	for k, n := range stats.Ignored {
		r.Stats.Ignored[k] += n
	}
}

// skippable reports whether a page failure should skip the page rather than
// abort the pass.
func skippable(err error) bool {
	if scraper.IsPageError(err) {
		return true
	}
	var status *navigator.StatusError
	return errors.As(err, &status)
}

// SyncDecks stores pilots and placements for every event without decks.
func (p *Pipeline) SyncDecks(ctx context.Context, runID string, report *review.Report) (*PagesResult, error) {
	log := runLogger(runID, "decks")

	events, err := p.store.EventsWithoutDecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading events without decks: %w", err)
	}

	res := &PagesResult{}
	for i, evt := range events {
		if i > 0 {
			if err := p.settle(ctx); err != nil {
				return res, err
			}
		}

		standings, err := p.standings(ctx, evt.Link)
		if err != nil {
			if ctx.Err() != nil || !skippable(err) {
				return res, err
			}
			log.Warn("skipping event page", logger.Fields{"url": evt.Link, "error": err.Error()})
			report.AddParseFailure(evt.Link, err)
			res.Skipped++
			logger.IncrCounter("pages.skipped")
			continue
		}
		res.Pages++

		if p.opts.DryRun {
			continue
		}
		stats, err := p.store.Batch(ctx, func(tx *storage.Tx) error {
			for _, pl := range standings.Placements() {
				if _, err := tx.InsertIfAbsent(ctx, storage.NewPilot(pl.Player)); err != nil {
					return err
				}
				ref := storage.DeckRef{
					EventLink: evt.Link,
					Player:    pl.Player,
					URL:       pl.Link,
					Name:      pl.Name,
					Rank:      pl.Rank,
				}
				if _, err := tx.InsertIfAbsent(ctx, ref); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("storing decks of %s: %w", evt.Link, err)
		}
		res.add(stats)
		log.Debug("event decks stored", logger.Fields{
			"url":    evt.Link,
			"layout": standings.Layout.String(),
			"decks":  standings.Len(),
		})
	}

	log.Info("decks synchronized", logger.Fields{"pages": res.Pages, "skipped": res.Skipped})
	return res, nil
}

func (p *Pipeline) standings(ctx context.Context, url string) (*scraper.Standings, error) {
	doc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return p.parser.ParseStandings(doc.Reader(), url)
}

// SyncDeckLists stores the card lines of every deck without a list.
func (p *Pipeline) SyncDeckLists(ctx context.Context, runID string, report *review.Report) (*PagesResult, error) {
	log := runLogger(runID, "decklists")

	decks, err := p.store.DecksWithoutLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading decks without lists: %w", err)
	}

	res := &PagesResult{}
	for i, deck := range decks {
		if i > 0 {
			if err := p.settle(ctx); err != nil {
				return res, err
			}
		}

		url := p.opts.EventRoot + deck.URL
		lines, err := p.deckList(ctx, url)
		if err != nil {
			if ctx.Err() != nil || !skippable(err) {
				return res, err
			}
			log.Warn("skipping deck page", logger.Fields{"url": url, "error": err.Error()})
			report.AddParseFailure(url, err)
			res.Skipped++
			logger.IncrCounter("pages.skipped")
			continue
		}
		res.Pages++
		if len(lines) == 0 {
			log.Warn("deck page has no cards", logger.Fields{"url": url, "deck_id": deck.ID})
			continue
		}

		if p.opts.DryRun {
			continue
		}
		stats, err := p.store.Batch(ctx, func(tx *storage.Tx) error {
			for _, line := range lines {
				entry := storage.DeckListEntry{
					CardID:   line.CardID,
					DeckID:   deck.ID,
					Count:    line.Count,
					Slot:     line.Slot,
					CardName: line.CardName,
				}
				if _, err := tx.InsertIfAbsent(ctx, entry); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("storing deck list of %s: %w", url, err)
		}
		res.add(stats)
	}

	log.Info("deck lists synchronized", logger.Fields{"pages": res.Pages, "skipped": res.Skipped})
	return res, nil
}

func (p *Pipeline) deckList(ctx context.Context, url string) ([]scraper.DeckListLine, error) {
	doc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return p.parser.ParseDeckList(doc.Reader(), url)
}
