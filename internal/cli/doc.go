// Package cli implements the command-line interface for mtgtop8-sync.
//
// The cli package provides the Cobra-based commands that run single sync passes
// (events, decks, deck lists, cards), assemble and export the unified table, or
// run everything in order. Results are printed as text or JSON and the exit code
// tells schedulers whether new events were found.
package cli
