package pipeline

import (
	"context"
	"time"

	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/review"
)

// RunOptions selects the optional passes of Run.
type RunOptions struct {
	SyncCards bool
	Assemble  bool
}

// RunResult is the outcome of every pass of one run.
type RunResult struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	DryRun    bool            `json:"dry_run,omitempty"`
	Events    *EventsResult   `json:"events,omitempty"`
	Decks     *PagesResult    `json:"decks,omitempty"`
	DeckLists *PagesResult    `json:"deck_lists,omitempty"`
	Cards     *CardsResult    `json:"cards,omitempty"`
	Assembled *AssembleResult `json:"assembled,omitempty"`
	Review    *review.Report  `json:"review"`
}

// NewEvents returns the number of events stored by this run.
func (r *RunResult) NewEvents() int {
	if r.Events == nil {
		return 0
	}
	return len(r.Events.NewEvents)
}

// Run executes the event, deck and deck list passes, then optionally the card
// and assemble passes. It stops at the first pass that fails and returns what
// was completed so far.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	runID := NewRunID()
	res := &RunResult{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		DryRun:    p.opts.DryRun,
		Review:    review.New(runID),
	}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	log := runLogger(runID, "run")
	log.Info("run started", logger.Fields{"base_url": p.opts.BaseURL, "dry_run": p.opts.DryRun})

	var err error
	if res.Events, err = p.SyncEvents(ctx, runID); err != nil {
		return res, err
	}
	if res.Decks, err = p.SyncDecks(ctx, runID, res.Review); err != nil {
		return res, err
	}
	if res.DeckLists, err = p.SyncDeckLists(ctx, runID, res.Review); err != nil {
		return res, err
	}
	if opts.SyncCards {
		if res.Cards, err = p.SyncCards(ctx, runID); err != nil {
			return res, err
		}
	}
	if opts.Assemble {
		if res.Assembled, err = p.Assemble(ctx, runID, res.Review); err != nil {
			return res, err
		}
	}

	log.Info("run finished", logger.Fields{
		"new_events":     res.NewEvents(),
		"review_clean":   res.Review.Clean(),
		"parse_failures": len(res.Review.ParseFailures),
	})
	return res, nil
}
