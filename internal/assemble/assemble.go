package assemble

import (
	"cmp"
	"slices"

	"github.com/pfrederiksen/mtgtop8-sync/internal/cardid"
	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/ranking"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
	"github.com/pfrederiksen/mtgtop8-sync/internal/taxonomy"
)

// Tables is the input of Assemble.
type Tables = storage.Snapshot

// LabeledDeck is a deck after name fixes, rank normalization and classification.
type LabeledDeck struct {
	storage.Deck
	Archetype string `json:"archetype"`
	Category  string `json:"category"`
}

// Unresolved is a deck list entry whose card id has no catalog card.
type Unresolved struct {
	CardID string `json:"card_id"`
	DeckID int64  `json:"deck_id"`
	Slot   string `json:"slot"`
}

// Result is the unified table plus the cleaned source tables.
type Result struct {
	Rows       []Row
	Decks      []LabeledDeck
	DeckLists  []storage.DeckListEntry
	Cards      []storage.Card
	Unresolved []Unresolved
}

// Unclassified returns the decks missing an archetype or a category.
func (r *Result) Unclassified() []LabeledDeck {
	var out []LabeledDeck
	for _, d := range r.Decks {
		if d.Archetype == "" || d.Category == "" {
			out = append(out, d)
		}
	}
	return out
}

// Assembler joins tables using the curated cleanup rules.
type Assembler struct {
	ids      *cardid.Normalizer
	taxonomy *taxonomy.Classifier
	ranks    *ranking.Normalizer
	rules    *curation.Rules
}

// New builds an Assembler.
func New(ids *cardid.Normalizer, tax *taxonomy.Classifier, ranks *ranking.Normalizer, rules *curation.Rules) *Assembler {
	return &Assembler{ids: ids, taxonomy: tax, ranks: ranks, rules: rules}
}

// NewFromRules builds an Assembler with every component taken from rules.
func NewFromRules(rules *curation.Rules) (*Assembler, error) {
	ids, err := cardid.New(rules.CardIDs)
	if err != nil {
		return nil, err
	}
	return New(ids, taxonomy.New(rules.Taxonomy), ranking.New(rules.Ranks), rules), nil
}

// Assemble runs the join. Entries whose card is missing from the catalog are
// left out of the rows and reported in Result.Unresolved; entries normalized to
// the exclusion sentinel are dropped silently.
func (a *Assembler) Assemble(t Tables) *Result {
	res := &Result{
		Cards:     a.ids.NormalizeCards(t.Cards),
		DeckLists: a.ids.NormalizeEntries(t.DeckLists),
	}

	events := indexBy(t.Events, func(e event.Event) int64 { return e.ID })
	pilots := indexBy(t.Pilots, func(p storage.Pilot) int64 { return p.ID })
	cards := indexBy(res.Cards, storage.Card.ID)

	for _, d := range a.ranks.Normalize(t.Decks) {
		labels := a.taxonomy.Label(d.ID, d.Name)
		d.Name = labels.Name
		res.Decks = append(res.Decks, LabeledDeck{Deck: d, Archetype: labels.Archetype, Category: labels.Category})
	}
	decks := indexBy(res.Decks, func(d LabeledDeck) int64 { return d.ID })

	// Each lookup is keyed on a unique id, so joining per entry never multiplies
	// rows; duplicates only come from duplicate entries and are dropped below.
	seen := make(map[string]bool, len(t.DeckLists))
	for _, entry := range t.DeckLists {
		deck, ok := decks[entry.DeckID]
		if !ok {
			continue
		}
		ev, ok := events[deck.EventID]
		if !ok {
			continue
		}
		pilot, ok := pilots[deck.PilotID]
		if !ok {
			continue
		}

		resolved := a.ids.Resolve(entry.CardID)
		if resolved.Excluded() {
			continue
		}
		card, ok := cards[resolved.ID]
		if !ok {
			res.Unresolved = append(res.Unresolved, Unresolved{CardID: resolved.ID, DeckID: entry.DeckID, Slot: entry.Slot})
			continue
		}

		row := Row{
			EventID:   ev.ID,
			EventName: ev.Name,
			Date:      ev.ISODate(),
			DeckID:    deck.ID,
			PilotID:   pilot.ID,
			DeckName:  deck.Name,
			FirstName: pilot.FirstName,
			LastName:  pilot.LastName,
			CardID:    resolved.ID,
			Name:      card.Name,
			Count:     entry.Count,
			Color:     card.Color,
			Slot:      entry.Slot,
			Archetype: deck.Archetype,
			Category:  deck.Category,
			LatestSet: a.latestSet(ev),
		}
		if resolved.Fixed {
			row.Name = resolved.Name
			row.Color = resolved.Color
		}

		k := row.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		res.Rows = append(res.Rows, row)
	}

	slices.SortStableFunc(res.Rows, func(x, y Row) int {
		return cmp.Or(
			cmp.Compare(x.EventID, y.EventID),
			cmp.Compare(x.DeckID, y.DeckID),
			cmp.Compare(x.Slot, y.Slot),
			cmp.Compare(x.CardID, y.CardID),
		)
	})
	for i := range res.Rows {
		res.Rows[i].Index = i
	}

	logger.SetGauge("assemble.rows", float64(len(res.Rows)))
	logger.SetGauge("assemble.unresolved", float64(len(res.Unresolved)))
	return res
}

func (a *Assembler) latestSet(e event.Event) string {
	if e.Date.IsZero() {
		return ""
	}
	return a.rules.LatestSet(e.Date)
}

// indexBy maps items by key. The first item wins on duplicate keys.
func indexBy[T any, K comparable](items []T, key func(T) K) map[K]T {
	m := make(map[K]T, len(items))
	for _, it := range items {
		k := key(it)
		if _, ok := m[k]; !ok {
			m[k] = it
		}
	}
	return m
}
