package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
)

type keywordRule struct {
	label    string
	keywords []string
}

// Classifier assigns archetypes and categories.
type Classifier struct {
	fold            cases.Caser
	archetypes      []keywordRule
	categories      []keywordRule
	names           map[int64]string
	archetypeByDeck map[int64]string
	categoryByDeck  map[int64]string
	archetypeByName map[string]string
}

// New builds a Classifier from the taxonomy tables.
func New(rules curation.TaxonomyRules) *Classifier {
	c := &Classifier{
		fold:            cases.Fold(),
		names:           rules.DeckNames,
		archetypeByDeck: rules.ArchetypeByDeck,
		categoryByDeck:  rules.CategoryByDeck,
		archetypeByName: rules.ArchetypeByName,
	}
	c.archetypes = c.compile(rules.Archetypes)
	c.categories = c.compile(rules.Categories)
	return c
}

func (c *Classifier) compile(rules []curation.KeywordRule) []keywordRule {
	out := make([]keywordRule, 0, len(rules))
	for _, r := range rules {
		kr := keywordRule{label: r.Label, keywords: make([]string, 0, len(r.Keywords))}
		for _, kw := range r.Keywords {
			kr.keywords = append(kr.keywords, c.fold.String(kw))
		}
		out = append(out, kr)
	}
	return out
}

// FixName returns the curated name for deckID, or name when there is none.
func (c *Classifier) FixName(deckID int64, name string) string {
	if fixed, ok := c.names[deckID]; ok {
		return fixed
	}
	return name
}

// Classify labels a deck. Keyword rules are checked in order and the last
// matching rule wins. Deck id overrides come next, then exact name overrides
// for the archetype. Either result is empty when nothing matched.
func (c *Classifier) Classify(deckName string, deckID int64) (archetype, category string) {
	folded := c.fold.String(deckName)

	archetype = lastMatch(c.archetypes, folded)
	category = lastMatch(c.categories, folded)

	if a, ok := c.archetypeByDeck[deckID]; ok {
		archetype = a
	}
	if cat, ok := c.categoryByDeck[deckID]; ok {
		category = cat
	}
	if a, ok := c.archetypeByName[deckName]; ok {
		archetype = a
	}
	return archetype, category
}

func lastMatch(rules []keywordRule, folded string) string {
	label := ""
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(folded, kw) {
				label = r.label
				break
			}
		}
	}
	return label
}

// Labels is a deck's corrected name and classification.
type Labels struct {
	Name      string
	Archetype string
	Category  string
}

// Complete reports whether both labels were assigned.
func (l Labels) Complete() bool {
	return l.Archetype != "" && l.Category != ""
}

// Label fixes the deck name and classifies the result.
func (c *Classifier) Label(deckID int64, name string) Labels {
	name = c.FixName(deckID, name)
	archetype, category := c.Classify(name, deckID)
	return Labels{Name: name, Archetype: archetype, Category: category}
}
