package cardid

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// Excluded is the canonical id of cards removed from analysis.
const Excluded = ""

// Resolution is the outcome of normalizing one id.
type Resolution struct {
	ID string
	// Fixed is set when a spot fix applied; Name and Color then replace the
	// card's own values, including an empty Color.
	Fixed bool
	Name  string
	Color string
}

// Excluded reports whether the id maps to the exclusion sentinel.
func (r Resolution) Excluded() bool {
	return r.ID == Excluded
}

// CycleError is returned by New when the rewrite tables loop.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("card id rewrites form a cycle: %s", strings.Join(e.Path, " -> "))
}

// Normalizer applies the card id rewrite tables.
type Normalizer struct {
	reprints map[string]string
	stale    map[string]string
	spot     map[string]curation.SpotFix
}

// New builds a Normalizer and rejects tables whose rewrites cycle.
func New(rules curation.CardIDRules) (*Normalizer, error) {
	n := &Normalizer{
		reprints: make(map[string]string, len(rules.Reprints)),
		stale:    make(map[string]string, len(rules.StaleSets)),
		spot:     make(map[string]curation.SpotFix, len(rules.SpotFixes)),
	}
	for _, rw := range rules.Reprints {
		n.reprints[rw.From] = rw.To
	}
	for _, rw := range rules.StaleSets {
		n.stale[rw.From] = rw.To
	}
	for _, f := range rules.SpotFixes {
		n.spot[f.From] = f
	}

	for _, from := range n.keys() {
		if path := n.cycle(from); path != nil {
			return nil, &CycleError{Path: path}
		}
	}
	return n, nil
}

func (n *Normalizer) keys() []string {
	keys := make([]string, 0, len(n.reprints)+len(n.stale)+len(n.spot))
	for k := range n.reprints {
		keys = append(keys, k)
	}
	for k := range n.stale {
		keys = append(keys, k)
	}
	for k := range n.spot {
		keys = append(keys, k)
	}
	return keys
}

func (n *Normalizer) cycle(id string) []string {
	seen := map[string]bool{id: true}
	path := []string{id}
	for {
		next, _ := n.step(id)
		if next == id {
			return nil
		}
		path = append(path, next)
		if seen[next] {
			return path
		}
		seen[next] = true
		id = next
	}
}

// step applies the first table that knows id. Self rewrites count as no change,
// except that a spot fix onto its own id still corrects name and color.
func (n *Normalizer) step(id string) (string, *curation.SpotFix) {
	if to, ok := n.reprints[id]; ok && to != id {
		return to, nil
	}
	if to, ok := n.stale[id]; ok && to != id {
		return to, nil
	}
	if f, ok := n.spot[id]; ok {
		return f.To, &f
	}
	return id, nil
}

// Normalize returns the canonical id. It is idempotent.
func (n *Normalizer) Normalize(id string) string {
	return n.Resolve(id).ID
}

// Resolve returns the canonical id with the last spot fix met on the way.
func (n *Normalizer) Resolve(id string) Resolution {
	res := Resolution{ID: id}
	for {
		next, fix := n.step(res.ID)
		if fix != nil {
			res.Fixed = true
			res.Name = fix.Name
			res.Color = fix.Color
		}
		if next == res.ID {
			return res
		}
		res.ID = next
	}
}

// NormalizeCards rewrites catalog cards to their canonical ids. Excluded cards
// are dropped and one card is kept per canonical id, preferring the card that
// already carried it.
func (n *Normalizer) NormalizeCards(cards []storage.Card) []storage.Card {
	out := make([]storage.Card, 0, len(cards))
	index := make(map[string]int, len(cards))
	native := make(map[string]bool, len(cards))

	for _, c := range cards {
		orig := c.ID()
		res := n.Resolve(orig)
		if res.Excluded() {
			continue
		}
		if res.ID != orig {
			c.SetNumber, c.SetCode = Split(res.ID)
		}
		if res.Fixed {
			c.Name = res.Name
			c.Color = res.Color
		}

		isNative := res.ID == orig
		i, dup := index[res.ID]
		switch {
		case !dup:
			index[res.ID] = len(out)
			native[res.ID] = isNative
			out = append(out, c)
		case isNative && !native[res.ID]:
			out[i] = c
			native[res.ID] = true
		}
	}
	return out
}

// NormalizeEntries rewrites deck list entries. Excluded cards are dropped and
// spot fixes replace the scraped card name.
func (n *Normalizer) NormalizeEntries(entries []storage.DeckListEntry) []storage.DeckListEntry {
	out := make([]storage.DeckListEntry, 0, len(entries))
	for _, e := range entries {
		res := n.Resolve(e.CardID)
		if res.Excluded() {
			continue
		}
		e.CardID = res.ID
		if res.Fixed {
			e.CardName = res.Name
		}
		out = append(out, e)
	}
	return out
}

// Split breaks a card id into its three-digit collector number and set code,
// the inverse of storage.CardID.
func Split(id string) (setNumber, setCode string) {
	if len(id) <= 3 {
		return id, ""
	}
	return id[:3], id[3:]
}
