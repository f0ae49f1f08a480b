package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/mtgtop8-sync/internal/pipeline"
	"github.com/pfrederiksen/mtgtop8-sync/internal/review"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *pipeline.RunResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *pipeline.RunResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *pipeline.RunResult, verbose bool) error {
	header := fmt.Sprintf("Run %s finished in %s", result.RunID, result.Duration.Round(time.Millisecond))
	if result.DryRun {
		header += " (dry run, nothing written)"
	}
	fmt.Fprintln(w, header)

	if ev := result.Events; ev != nil {
		fmt.Fprintf(w, "\nEvents: %d crawled, %d new\n", ev.Crawled, len(ev.NewEvents))
		for _, evt := range ev.NewEvents {
			fmt.Fprintf(w, "  NEW: %s (%s)\n", evt.Name, evt.ISODate())
			if verbose {
				fmt.Fprintf(w, "       Link: %s\n", evt.Link)
			}
		}
	}
	if d := result.Decks; d != nil {
		fmt.Fprintf(w, "\nDecks: %d event pages, %d skipped%s\n", d.Pages, d.Skipped, inserted(d.Stats, verbose))
	}
	if d := result.DeckLists; d != nil {
		fmt.Fprintf(w, "\nDeck lists: %d deck pages, %d skipped%s\n", d.Pages, d.Skipped, inserted(d.Stats, verbose))
	}
	if c := result.Cards; c != nil {
		fmt.Fprintf(w, "\nCards: %d fetched from %d sets%s\n", c.Fetched, len(c.Sets), inserted(c.Stats, verbose))
	}
	if a := result.Assembled; a != nil {
		fmt.Fprintf(w, "\nUnified table: %d rows\n", a.Rows)
		for _, f := range a.Files {
			fmt.Fprintf(w, "  wrote %s\n", f)
		}
	}

	// the review only has content once something was parsed or assembled
	if result.Review != nil && (result.Assembled != nil || len(result.Review.ParseFailures) > 0) {
		fmt.Fprintln(w)
		return review.Write(w, result.Review, review.FormatText)
	}
	return nil
}

// inserted summarizes per-table insert counts for verbose output.
func inserted(stats storage.BatchStats, verbose bool) string {
	if !verbose || len(stats.Inserted) == 0 {
		return ""
	}
	parts := make([]string, 0, len(storage.Tables))
	for _, kind := range storage.Tables {
		if n := stats.Inserted[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s +%d", kind, n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
