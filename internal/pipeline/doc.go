// Package pipeline runs the sync passes against the store.
//
// Each pass is incremental: events are crawled until the newest stored event is
// reached, placements are fetched only for events without decks and deck lists
// only for decks without cards. A page that fails to parse is skipped and
// recorded in the review report; the next run retries it because its rows are
// still missing. Integrity errors abort the pass.
package pipeline
