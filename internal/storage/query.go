package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
)

var tableColumns = map[TableKind][]string{
	TableEvent:    {"id", "name", "link", "date"},
	TablePilot:    {"id", "firstName", "lastName"},
	TableDeck:     {"id", "eventId", "pilotId", "deckUrl", "name", "rank"},
	TableDeckList: {"cardId", "deckId", "count", "slot", "cardName"},
	TableCard:     {"setNumber", "setCode", "name", "cmc", "color", "standardLegality", "oracleText", "manaCost"},
}

var tableOrder = map[TableKind]string{
	TableEvent:    "id",
	TablePilot:    "id",
	TableDeck:     "id",
	TableDeckList: "deckId, slot, cardId",
	TableCard:     "setCode, setNumber",
}

// Query returns every row of one table with values rendered as text.
func (s *Store) Query(ctx context.Context, kind TableKind) (*Table, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown table %q", kind)
	}
	cols := tableColumns[kind]
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(cols, ", "), kind, tableOrder[kind])

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", kind, err)
	}
	defer rows.Close()

	out := &Table{Kind: kind, Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = text(v)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Count returns the number of rows in a table.
func (s *Store) Count(ctx context.Context, kind TableKind) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown table %q", kind)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", kind)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", kind, err)
	}
	return n, nil
}

// Events returns all events ordered by id.
func (s *Store) Events(ctx context.Context) ([]event.Event, error) {
	return s.queryEvents(ctx, `SELECT id, name, link, date FROM event ORDER BY id`)
}

// EventsWithoutDecks returns events whose standings have not been stored yet.
func (s *Store) EventsWithoutDecks(ctx context.Context) ([]event.Event, error) {
	return s.queryEvents(ctx, `SELECT id, name, link, date FROM event
		WHERE id NOT IN (SELECT eventId FROM deck) ORDER BY id`)
}

func (s *Store) queryEvents(ctx context.Context, query string) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var e event.Event
		var date string
		if err := rows.Scan(&e.ID, &e.Name, &e.Link, &date); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.DateText = date
		e.Date = event.ParseDate(date)
		out = append(out, e)
	}
	return out, rows.Err()
}

// EventLinks returns the links of every stored event.
func (s *Store) EventLinks(ctx context.Context) (event.LinkSet, error) {
	return s.links(ctx, `SELECT link FROM event`)
}

// LatestEventLinks returns the links of the events on the most recent stored date.
// These are what an incremental crawl looks for to know it has caught up.
func (s *Store) LatestEventLinks(ctx context.Context) (event.LinkSet, error) {
	return s.links(ctx, `SELECT link FROM event WHERE date = (SELECT MAX(date) FROM event)`)
}

func (s *Store) links(ctx context.Context, query string) (event.LinkSet, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying event links: %w", err)
	}
	defer rows.Close()

	set := event.LinkSet{}
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scanning event link: %w", err)
		}
		set[link] = struct{}{}
	}
	return set, rows.Err()
}

// Pilots returns all pilots ordered by id.
func (s *Store) Pilots(ctx context.Context) ([]Pilot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, firstName, lastName FROM pilot ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying pilots: %w", err)
	}
	defer rows.Close()

	var out []Pilot
	for rows.Next() {
		var p Pilot
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName); err != nil {
			return nil, fmt.Errorf("scanning pilot: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Decks returns all decks ordered by id.
func (s *Store) Decks(ctx context.Context) ([]Deck, error) {
	return s.queryDecks(ctx, `SELECT id, eventId, pilotId, deckUrl, name, rank FROM deck ORDER BY id`)
}

// DecksWithoutLists returns decks whose card list has not been stored yet.
func (s *Store) DecksWithoutLists(ctx context.Context) ([]Deck, error) {
	return s.queryDecks(ctx, `SELECT id, eventId, pilotId, deckUrl, name, rank FROM deck
		WHERE id NOT IN (SELECT deckId FROM deckList) ORDER BY id`)
}

func (s *Store) queryDecks(ctx context.Context, query string) ([]Deck, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying decks: %w", err)
	}
	defer rows.Close()

	var out []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.EventID, &d.PilotID, &d.URL, &d.Name, &d.Rank); err != nil {
			return nil, fmt.Errorf("scanning deck: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeckLists returns all deck list entries.
func (s *Store) DeckLists(ctx context.Context) ([]DeckListEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cardId, deckId, count, slot, cardName FROM deckList ORDER BY deckId, slot, cardId`)
	if err != nil {
		return nil, fmt.Errorf("querying deck lists: %w", err)
	}
	defer rows.Close()

	var out []DeckListEntry
	for rows.Next() {
		var e DeckListEntry
		if err := rows.Scan(&e.CardID, &e.DeckID, &e.Count, &e.Slot, &e.CardName); err != nil {
			return nil, fmt.Errorf("scanning deck list entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Cards returns all cards.
func (s *Store) Cards(ctx context.Context) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT setNumber, setCode, name, cmc, color, standardLegality, oracleText, manaCost
		 FROM card ORDER BY setCode, setNumber`)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	var out []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.SetNumber, &c.SetCode, &c.Name, &c.CMC, &c.Color,
			&c.StandardLegality, &c.OracleText, &c.ManaCost); err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Snapshot holds the full contents of the store.
type Snapshot struct {
	Events    []event.Event
	Pilots    []Pilot
	Decks     []Deck
	DeckLists []DeckListEntry
	Cards     []Card
}

// LoadSnapshot reads every table.
func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Events, err = s.Events(ctx); err != nil {
		return nil, err
	}
	if snap.Pilots, err = s.Pilots(ctx); err != nil {
		return nil, err
	}
	if snap.Decks, err = s.Decks(ctx); err != nil {
		return nil, err
	}
	if snap.DeckLists, err = s.DeckLists(ctx); err != nil {
		return nil, err
	}
	if snap.Cards, err = s.Cards(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}
