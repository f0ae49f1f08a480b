package review

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/pfrederiksen/mtgtop8-sync/internal/assemble"
	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/ranking"
)

// UnclassifiedDeck is a deck missing an archetype, a category or both.
type UnclassifiedDeck struct {
	DeckID           int64  `json:"deck_id"`
	Name             string `json:"name"`
	URL              string `json:"url"`
	MissingArchetype bool   `json:"missing_archetype"`
	MissingCategory  bool   `json:"missing_category"`
}

// UnresolvedCard is a deck list card id with no catalog card.
type UnresolvedCard struct {
	CardID string `json:"card_id"`
	DeckID int64  `json:"deck_id"`
	URL    string `json:"url"`
}

// OutOfSetCard is a card played inside the standard window whose set is not a
// standard set. Usually a stale id that needs a rewrite rule.
type OutOfSetCard struct {
	CardID string `json:"card_id"`
	Name   string `json:"name"`
	DeckID int64  `json:"deck_id"`
	URL    string `json:"url"`
}

// PendingRank is a deck still ranked by points after rank normalization.
type PendingRank struct {
	DeckID  int64  `json:"deck_id"`
	EventID int64  `json:"event_id"`
	Rank    string `json:"rank"`
}

// ParseFailure is a page skipped because it could not be parsed.
type ParseFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Report lists everything that needs a human decision.
type Report struct {
	RunID             string             `json:"run_id,omitempty"`
	GeneratedAt       time.Time          `json:"generated_at"`
	UnclassifiedDecks []UnclassifiedDeck `json:"unclassified_decks"`
	UnresolvedCards   []UnresolvedCard   `json:"unresolved_cards"`
	OutOfSetCards     []OutOfSetCard     `json:"out_of_set_cards"`
	PendingRanks      []PendingRank      `json:"pending_ranks"`
	ParseFailures     []ParseFailure     `json:"parse_failures"`
}

// New returns an empty report.
func New(runID string) *Report {
	return &Report{RunID: runID, GeneratedAt: time.Now().UTC()}
}

// Clean reports whether nothing needs attention.
func (r *Report) Clean() bool {
	return len(r.UnclassifiedDecks) == 0 &&
		len(r.UnresolvedCards) == 0 &&
		len(r.OutOfSetCards) == 0 &&
		len(r.PendingRanks) == 0 &&
		len(r.ParseFailures) == 0
}

// AddParseFailure records a page that was skipped.
func (r *Report) AddParseFailure(url string, err error) {
	r.ParseFailures = append(r.ParseFailures, ParseFailure{URL: url, Reason: err.Error()})
}

// Checker derives review items from an assembled table.
type Checker struct {
	rules     *curation.Rules
	eventRoot string
	expected  map[string]bool
}

// NewChecker builds a Checker. eventRoot is prefixed to relative deck URLs.
func NewChecker(rules *curation.Rules, eventRoot string) *Checker {
	expected := make(map[string]bool, len(rules.Standard.ExpectedExceptions))
	for _, name := range rules.Standard.ExpectedExceptions {
		expected[name] = true
	}
	return &Checker{rules: rules, eventRoot: eventRoot, expected: expected}
}

// Check fills r from res.
func (c *Checker) Check(r *Report, res *assemble.Result) {
	urls := make(map[int64]string, len(res.Decks))
	for _, d := range res.Decks {
		urls[d.ID] = c.deckURL(d.URL)

		if d.Archetype == "" || d.Category == "" {
			r.UnclassifiedDecks = append(r.UnclassifiedDecks, UnclassifiedDeck{
				DeckID:           d.ID,
				Name:             d.Name,
				URL:              urls[d.ID],
				MissingArchetype: d.Archetype == "",
				MissingCategory:  d.Category == "",
			})
		}
		if ranking.IsPoints(d.Rank) {
			r.PendingRanks = append(r.PendingRanks, PendingRank{DeckID: d.ID, EventID: d.EventID, Rank: d.Rank})
		}
	}

	seenUnresolved := map[UnresolvedCard]bool{}
	for _, u := range res.Unresolved {
		uc := UnresolvedCard{CardID: u.CardID, DeckID: u.DeckID, URL: urls[u.DeckID]}
		if !seenUnresolved[uc] {
			seenUnresolved[uc] = true
			r.UnresolvedCards = append(r.UnresolvedCards, uc)
		}
	}

	r.OutOfSetCards = append(r.OutOfSetCards, c.outOfSet(res.Rows, urls)...)
}

func (c *Checker) outOfSet(rows []assemble.Row, urls map[int64]string) []OutOfSetCard {
	var out []OutOfSetCard
	seen := map[OutOfSetCard]bool{}
	for _, row := range rows {
		date, err := time.Parse(event.ISOLayout, row.Date)
		if err != nil || !c.rules.StandardApplies(date) {
			continue
		}
		if c.rules.InStandard(row.CardID) || c.expected[row.Name] {
			continue
		}
		oc := OutOfSetCard{CardID: row.CardID, Name: row.Name, DeckID: row.DeckID, URL: urls[row.DeckID]}
		if !seen[oc] {
			seen[oc] = true
			out = append(out, oc)
		}
	}
	slices.SortFunc(out, func(a, b OutOfSetCard) int {
		return cmp.Or(strings.Compare(a.CardID, b.CardID), cmp.Compare(a.DeckID, b.DeckID))
	})
	return out
}

func (c *Checker) deckURL(rel string) string {
	if rel == "" || strings.HasPrefix(rel, "http") {
		return rel
	}
	return c.eventRoot + rel
}
