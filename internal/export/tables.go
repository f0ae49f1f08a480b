package export

import (
	"strconv"

	"github.com/pfrederiksen/mtgtop8-sync/internal/assemble"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// Table is a named set of rows written as one CSV file.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// FileName is the table's CSV file name.
func (t Table) FileName() string {
	return t.Name + ".csv"
}

// FullTable renders the unified table.
func FullTable(rows []assemble.Row) Table {
	t := Table{Name: "full_table", Columns: assemble.Columns}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.Record())
	}
	return t
}

// EventTable renders events with the latest set at each event's date.
func EventTable(events []event.Event, latestSet func(event.Event) string) Table {
	t := Table{Name: "event", Columns: []string{"eventId", "name", "link", "date", "latest_set"}}
	for _, e := range events {
		t.Rows = append(t.Rows, []string{id(e.ID), e.Name, e.Link, e.ISODate(), latestSet(e)})
	}
	return t
}

// PilotTable renders pilots.
func PilotTable(pilots []storage.Pilot) Table {
	t := Table{Name: "pilot", Columns: []string{"pilotId", "firstName", "lastName"}}
	for _, p := range pilots {
		t.Rows = append(t.Rows, []string{id(p.ID), p.FirstName, p.LastName})
	}
	return t
}

// DeckTable renders labeled decks.
func DeckTable(decks []assemble.LabeledDeck) Table {
	t := Table{Name: "deck", Columns: []string{"deckId", "eventId", "pilotId", "deckUrl", "name", "rank", "archetype", "category"}}
	for _, d := range decks {
		t.Rows = append(t.Rows, []string{id(d.ID), id(d.EventID), id(d.PilotID), d.URL, d.Name, d.Rank, d.Archetype, d.Category})
	}
	return t
}

// DeckListTable renders normalized deck list entries.
func DeckListTable(entries []storage.DeckListEntry) Table {
	t := Table{Name: "deck_list", Columns: []string{"cardId", "deckId", "count", "slot", "cardName"}}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{e.CardID, id(e.DeckID), strconv.Itoa(e.Count), e.Slot, e.CardName})
	}
	return t
}

// CardTable renders normalized catalog cards.
func CardTable(cards []storage.Card) Table {
	t := Table{Name: "card", Columns: []string{"cardId", "setNumber", "setName", "name", "cmc", "color", "standardLegality", "oracleText", "manaCost"}}
	for _, c := range cards {
		t.Rows = append(t.Rows, []string{c.ID(), c.SetNumber, c.SetCode, c.Name, strconv.Itoa(c.CMC), c.Color, c.StandardLegality, c.OracleText, c.ManaCost})
	}
	return t
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
