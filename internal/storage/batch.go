package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
)

// BatchStats counts inserted and ignored rows per table.
type BatchStats struct {
	Inserted map[TableKind]int `json:"inserted"`
	Ignored  map[TableKind]int `json:"ignored"`
}

func newBatchStats() BatchStats {
	return BatchStats{Inserted: map[TableKind]int{}, Ignored: map[TableKind]int{}}
}

// Tx is an open batch. It must not be used after the Batch callback returns.
type Tx struct {
	tx    *sql.Tx
	stats BatchStats
}

// Batch runs fn inside one transaction. The transaction commits only if fn
// returns nil; any error rolls back every write made by fn.
func (s *Store) Batch(ctx context.Context, fn func(tx *Tx) error) (BatchStats, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BatchStats{}, fmt.Errorf("beginning batch: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // no-op after commit

	tx := &Tx{tx: sqlTx, stats: newBatchStats()}
	if err := fn(tx); err != nil {
		logger.Warn("batch rolled back", logger.Fields{"error": err.Error()})
		return BatchStats{}, err
	}
	if err := sqlTx.Commit(); err != nil {
		return BatchStats{}, fmt.Errorf("committing batch: %w", err)
	}

	for kind, n := range tx.stats.Inserted {
		logger.AddCounter("rows.inserted."+string(kind), int64(n))
	}
	for kind, n := range tx.stats.Ignored {
		logger.AddCounter("rows.ignored."+string(kind), int64(n))
	}
	return tx.stats, nil
}

// InsertIfAbsent inserts one record of type event.Event, Pilot, DeckRef,
// DeckListEntry or Card. inserted is false when a row with the same natural key
// already exists; that case is not an error.
func (t *Tx) InsertIfAbsent(ctx context.Context, record any) (inserted bool, err error) {
	switch r := record.(type) {
	case event.Event:
		return t.InsertEvent(ctx, r)
	case Pilot:
		return t.InsertPilot(ctx, r)
	case DeckRef:
		return t.InsertDeck(ctx, r)
	case DeckListEntry:
		return t.InsertDeckListEntry(ctx, r)
	case Card:
		return t.InsertCard(ctx, r)
	default:
		return false, fmt.Errorf("unsupported record type %T", record)
	}
}

// InsertEvent inserts an event keyed by link.
func (t *Tx) InsertEvent(ctx context.Context, e event.Event) (bool, error) {
	return t.exec(ctx, TableEvent,
		`INSERT INTO event (name, link, date) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		e.Name, e.Link, e.ISODate())
}

// InsertPilot inserts a pilot keyed by first and last name.
func (t *Tx) InsertPilot(ctx context.Context, p Pilot) (bool, error) {
	return t.exec(ctx, TablePilot,
		`INSERT INTO pilot (firstName, lastName) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		p.FirstName, p.LastName)
}

// InsertDeck resolves the deck's event and pilot and inserts it. A missing event
// or pilot returns *DanglingReferenceError and inserts nothing.
func (t *Tx) InsertDeck(ctx context.Context, d DeckRef) (bool, error) {
	eventID, err := t.eventID(ctx, d.EventLink)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, &DanglingReferenceError{Table: TableEvent, Key: d.EventLink, Deck: d.URL}
		}
		return false, err
	}
	pilotID, err := t.pilotID(ctx, NewPilot(d.Player))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, &DanglingReferenceError{Table: TablePilot, Key: d.Player, Deck: d.URL}
		}
		return false, err
	}
	return t.exec(ctx, TableDeck,
		`INSERT INTO deck (eventId, pilotId, deckUrl, name, rank) VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		eventID, pilotID, d.URL, d.Name, d.Rank)
}

// InsertDeckListEntry inserts one card line keyed by (cardId, deckId, slot).
func (t *Tx) InsertDeckListEntry(ctx context.Context, e DeckListEntry) (bool, error) {
	return t.exec(ctx, TableDeckList,
		`INSERT INTO deckList (cardId, deckId, count, slot, cardName) VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		e.CardID, e.DeckID, e.Count, e.Slot, e.CardName)
}

// InsertCard inserts a card keyed by (setNumber, setCode).
func (t *Tx) InsertCard(ctx context.Context, c Card) (bool, error) {
	return t.exec(ctx, TableCard,
		`INSERT INTO card (setNumber, setCode, name, cmc, color, standardLegality, oracleText, manaCost)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		c.SetNumber, c.SetCode, c.Name, c.CMC, c.Color, c.StandardLegality, c.OracleText, c.ManaCost)
}

func (t *Tx) exec(ctx context.Context, kind TableKind, query string, args ...any) (bool, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("inserting into %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting into %s: %w", kind, err)
	}
	if n == 0 {
		t.stats.Ignored[kind]++
		return false, nil
	}
	t.stats.Inserted[kind]++
	return true, nil
}

func (t *Tx) eventID(ctx context.Context, link string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM event WHERE link = ?`, link).Scan(&id)
	return id, err
}

// pilotID prefers the exact name split and falls back to the concatenated key,
// which is how pilots stored by older runs are identified.
func (t *Tx) pilotID(ctx context.Context, p Pilot) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM pilot WHERE firstName = ? AND lastName = ?`, p.FirstName, p.LastName).Scan(&id)
	if !errors.Is(err, sql.ErrNoRows) {
		return id, err
	}
	err = t.tx.QueryRowContext(ctx,
		`SELECT id FROM pilot WHERE (firstName || lastName) = ? ORDER BY id LIMIT 1`, p.Key()).Scan(&id)
	return id, err
}
