package assemble

import (
	"strconv"
	"strings"
)

// Columns is the fixed projection of the unified table.
var Columns = []string{
	"eventId", "name_event", "date", "deckId", "pilotId", "name_deck",
	"firstName", "lastName", "cardId", "name", "count", "color",
	"slot", "archetype", "category", "latest_set",
}

// Row is one card line of one deck, with its event, pilot and card data.
type Row struct {
	Index     int    `json:"index"`
	EventID   int64  `json:"eventId"`
	EventName string `json:"name_event"`
	Date      string `json:"date"`
	DeckID    int64  `json:"deckId"`
	PilotID   int64  `json:"pilotId"`
	DeckName  string `json:"name_deck"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CardID    string `json:"cardId"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Color     string `json:"color"`
	Slot      string `json:"slot"`
	Archetype string `json:"archetype"`
	Category  string `json:"category"`
	LatestSet string `json:"latest_set"`
}

// Record renders the row in Columns order.
func (r Row) Record() []string {
	return []string{
		strconv.FormatInt(r.EventID, 10),
		r.EventName,
		r.Date,
		strconv.FormatInt(r.DeckID, 10),
		strconv.FormatInt(r.PilotID, 10),
		r.DeckName,
		r.FirstName,
		r.LastName,
		r.CardID,
		r.Name,
		strconv.Itoa(r.Count),
		r.Color,
		r.Slot,
		r.Archetype,
		r.Category,
		r.LatestSet,
	}
}

func (r Row) key() string {
	return strings.Join(r.Record(), "\x1f")
}
