package review

import (
	"encoding/json"
	"fmt"
	"io"
)

// Format selects how a report is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Write renders r in the given format.
func Write(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatText:
		return writeText(w, r)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeText(w io.Writer, r *Report) error {
	if r.Clean() {
		_, err := fmt.Fprintln(w, "Review: nothing to fix.")
		return err
	}

	fmt.Fprintln(w, "Review:")
	if n := len(r.UnclassifiedDecks); n > 0 {
		fmt.Fprintf(w, "\nUnclassified decks (%d):\n", n)
		for _, d := range r.UnclassifiedDecks {
			fmt.Fprintf(w, "  deck %d %q missing %s\n", d.DeckID, d.Name, missing(d))
			fmt.Fprintf(w, "       %s\n", d.URL)
		}
	}
	if n := len(r.UnresolvedCards); n > 0 {
		fmt.Fprintf(w, "\nUnresolved card ids (%d):\n", n)
		for _, c := range r.UnresolvedCards {
			fmt.Fprintf(w, "  %s in deck %d\n", c.CardID, c.DeckID)
			fmt.Fprintf(w, "       %s\n", c.URL)
		}
	}
	if n := len(r.OutOfSetCards); n > 0 {
		fmt.Fprintf(w, "\nCards outside the standard sets (%d):\n", n)
		for _, c := range r.OutOfSetCards {
			fmt.Fprintf(w, "  %s %s in deck %d\n", c.CardID, c.Name, c.DeckID)
			fmt.Fprintf(w, "       %s\n", c.URL)
		}
	}
	if n := len(r.PendingRanks); n > 0 {
		fmt.Fprintf(w, "\nDecks still ranked by points (%d):\n", n)
		for _, p := range r.PendingRanks {
			fmt.Fprintf(w, "  deck %d in event %d: %s\n", p.DeckID, p.EventID, p.Rank)
		}
	}
	if n := len(r.ParseFailures); n > 0 {
		fmt.Fprintf(w, "\nSkipped pages (%d):\n", n)
		for _, f := range r.ParseFailures {
			fmt.Fprintf(w, "  %s\n", f.URL)
			fmt.Fprintf(w, "       %s\n", f.Reason)
		}
	}
	return nil
}

func missing(d UnclassifiedDeck) string {
	switch {
	case d.MissingArchetype && d.MissingCategory:
		return "archetype and category"
	case d.MissingArchetype:
		return "archetype"
	default:
		return "category"
	}
}
