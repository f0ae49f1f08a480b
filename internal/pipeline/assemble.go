package pipeline

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/mtgtop8-sync/internal/assemble"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/export"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/review"
)

// AssembleResult is the unified table and the files it was exported to.
type AssembleResult struct {
	Result *assemble.Result `json:"-"`
	Rows   int              `json:"rows"`
	Files  []string         `json:"files,omitempty"`
}

// Assemble builds the unified table from the store, fills report with what
// needs review and exports every table when a writer is configured.
func (p *Pipeline) Assemble(ctx context.Context, runID string, report *review.Report) (*AssembleResult, error) {
	log := runLogger(runID, "assemble")

	snap, err := p.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}

	res := p.assembler.Assemble(*snap)
	p.checker.Check(report, res)
	out := &AssembleResult{Result: res, Rows: len(res.Rows)}

	log.Info("table assembled", logger.Fields{
		"rows":         len(res.Rows),
		"unresolved":   len(res.Unresolved),
		"unclassified": len(report.UnclassifiedDecks),
	})
	if p.writer == nil || p.opts.DryRun {
		return out, nil
	}

	out.Files, err = p.writer.WriteAll(
		export.FullTable(res.Rows),
		export.EventTable(snap.Events, p.latestSet),
		export.DeckTable(res.Decks),
		export.DeckListTable(res.DeckLists),
		export.CardTable(res.Cards),
		export.PilotTable(snap.Pilots),
	)
	if err != nil {
		return nil, fmt.Errorf("exporting tables: %w", err)
	}
	log.Info("tables exported", logger.Fields{"dir": p.writer.Dir(), "files": len(out.Files)})

	if p.uploader != nil {
		if err := p.uploader.Upload(ctx, out.Files); err != nil {
			return nil, fmt.Errorf("uploading tables: %w", err)
		}
	}
	return out, nil
}

func (p *Pipeline) latestSet(e event.Event) string {
	if e.Date.IsZero() {
		return ""
	}
	return p.rules.LatestSet(e.Date)
}
