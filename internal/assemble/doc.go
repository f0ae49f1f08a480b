// Package assemble joins the five stored tables into the denormalized table
// used for analysis.
//
// Card identifiers are normalized, ranks rewritten and decks labeled before the
// join. Rows are sorted by event, deck and slot and carry a dense index.
package assemble
