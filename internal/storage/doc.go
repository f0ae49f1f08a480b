// Package storage persists scraped tournament data in SQLite.
//
// The schema has five tables: event, pilot, deck, deckList and card. Every insert
// is an insert-or-ignore on the table's natural key, so re-running a sync never
// duplicates rows. Decks reference their event by link and their pilot by name;
// both are resolved at write time and a missing reference fails the whole batch.
// Writes happen inside Batch, one transaction per batch.
package storage
