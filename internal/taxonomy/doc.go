// Package taxonomy labels decks with an archetype and a color category from
// their names, with curated per-deck and per-name overrides.
package taxonomy
