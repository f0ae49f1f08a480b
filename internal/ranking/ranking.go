package ranking

import (
	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// Normalizer rewrites deck ranks.
type Normalizer struct {
	byEvent   map[int64]map[string]string
	composite map[string]string
}

// New builds a Normalizer from the rank tables.
func New(rules curation.RankRules) *Normalizer {
	n := &Normalizer{
		byEvent:   make(map[int64]map[string]string, len(rules.ByEvent)),
		composite: rules.Composite,
	}
	for eventID, table := range rules.ByEvent {
		m := make(map[string]string, len(table))
		for _, pr := range table {
			if _, ok := m[pr.Points]; !ok {
				m[pr.Points] = pr.Rank
			}
		}
		n.byEvent[eventID] = m
	}
	return n
}

// Rank returns the normalized rank of a deck placed with rank in eventID.
// Point totals are looked up in the event's table first; the result, or the
// original rank, then goes through the composite table.
func (n *Normalizer) Rank(eventID int64, rank string) string {
	if table, ok := n.byEvent[eventID]; ok {
		if r, ok := table[rank]; ok {
			rank = r
		}
	}
	if r, ok := n.composite[rank]; ok {
		rank = r
	}
	return rank
}

// Normalize returns decks with their ranks rewritten. The input is not modified.
func (n *Normalizer) Normalize(decks []storage.Deck) []storage.Deck {
	out := make([]storage.Deck, len(decks))
	for i, d := range decks {
		d.Rank = n.Rank(d.EventID, d.Rank)
		out[i] = d
	}
	return out
}

// Pending lists decks whose rank is still a point total after normalization.
func (n *Normalizer) Pending(decks []storage.Deck) []storage.Deck {
	var out []storage.Deck
	for _, d := range decks {
		if IsPoints(n.Rank(d.EventID, d.Rank)) {
			out = append(out, d)
		}
	}
	return out
}
