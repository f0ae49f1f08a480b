package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// ErrNoCatalog is returned by SyncCards when no card source is configured.
var ErrNoCatalog = errors.New("no card catalog configured")

// CardsResult summarizes a card sync.
type CardsResult struct {
	Sets    []string           `json:"sets"`
	Fetched int                `json:"fetched"`
	Stats   storage.BatchStats `json:"stats"`
}

// CardSets returns the set codes SyncCards fetches.
func (p *Pipeline) CardSets() []string {
	if len(p.opts.CardSets) > 0 {
		return p.opts.CardSets
	}
	return p.rules.Catalog.Sets
}

// SyncCards fetches every configured set from the catalog and stores cards not
// stored yet.
func (p *Pipeline) SyncCards(ctx context.Context, runID string) (*CardsResult, error) {
	if p.catalog == nil {
		return nil, ErrNoCatalog
	}
	log := runLogger(runID, "cards")

	sets := p.CardSets()
	cards, err := p.catalog.FetchSets(ctx, sets)
	if err != nil {
		return nil, fmt.Errorf("fetching cards: %w", err)
	}
	res := &CardsResult{Sets: sets, Fetched: len(cards)}
	if p.opts.DryRun {
		return res, nil
	}

	res.Stats, err = p.store.Batch(ctx, func(tx *storage.Tx) error {
		for _, c := range cards {
			if _, err := tx.InsertIfAbsent(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing cards: %w", err)
	}

	log.Info("cards synchronized", logger.Fields{
		"sets":     len(sets),
		"fetched":  len(cards),
		"inserted": res.Stats.Inserted[storage.TableCard],
	})
	return res, nil
}
