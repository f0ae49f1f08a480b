package storage

import (
	"fmt"
	"strings"
	"unicode"
)

// TableKind names one of the five tables
type TableKind string

const (
	TableEvent    TableKind = "event"
	TablePilot    TableKind = "pilot"
	TableDeck     TableKind = "deck"
	TableDeckList TableKind = "deckList"
	TableCard     TableKind = "card"
)

// Tables lists every table in dependency order.
var Tables = []TableKind{TableEvent, TablePilot, TableDeck, TableDeckList, TableCard}

// Valid reports whether k is a known table.
func (k TableKind) Valid() bool {
	for _, t := range Tables {
		if t == k {
			return true
		}
	}
	return false
}

// Pilot is a player. Identity is FirstName+LastName.
type Pilot struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewPilot splits a scraped player name at its first run of whitespace. A name
// with a single component, such as an online handle, gets an empty last name.
func NewPilot(fullName string) Pilot {
	fullName = strings.TrimSpace(fullName)
	idx := strings.IndexFunc(fullName, unicode.IsSpace)
	if idx < 0 {
		return Pilot{FirstName: fullName}
	}
	return Pilot{
		FirstName: fullName[:idx],
		LastName:  strings.TrimSpace(fullName[idx:]),
	}
}

// Key returns the identity key used to resolve a pilot from a deck.
func (p Pilot) Key() string {
	return p.FirstName + p.LastName
}

// Deck is a stored placement.
type Deck struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	PilotID int64  `json:"pilot_id"`
	URL     string `json:"url"`
	Name    string `json:"name"`
	Rank    string `json:"rank"`
}

// DeckRef is a placement as scraped, before its references are resolved.
type DeckRef struct {
	EventLink string
	Player    string
	URL       string
	Name      string
	Rank      string
}

// DeckListEntry is one card line of a deck.
type DeckListEntry struct {
	CardID   string `json:"card_id"`
	DeckID   int64  `json:"deck_id"`
	Count    int    `json:"count"`
	Slot     string `json:"slot"`
	CardName string `json:"card_name"`
}

// Card is a card printing from the catalog.
type Card struct {
	SetNumber        string `json:"set_number"`
	SetCode          string `json:"set_code"`
	Name             string `json:"name"`
	CMC              int    `json:"cmc"`
	Color            string `json:"color"`
	StandardLegality string `json:"standard_legality"`
	OracleText       string `json:"oracle_text"`
	ManaCost         string `json:"mana_cost"`
}

// ID returns the canonical card id: collector number padded to three digits
// followed by the set code, e.g. "004m21".
func (c Card) ID() string {
	return CardID(c.SetNumber, c.SetCode)
}

// CardID builds a canonical card id from its parts.
func CardID(setNumber, setCode string) string {
	if len(setNumber) < 3 {
		setNumber = strings.Repeat("0", 3-len(setNumber)) + setNumber
	}
	return setNumber + setCode
}

// DanglingReferenceError is returned when a deck's event or pilot is not stored.
type DanglingReferenceError struct {
	Table TableKind
	Key   string
	Deck  string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: no %s for %q (deck %s)", e.Table, e.Key, e.Deck)
}

// Table is a generic result of Query, with values rendered as text.
type Table struct {
	Kind    TableKind
	Columns []string
	Rows    [][]string
}
