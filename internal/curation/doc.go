// Package curation loads the hand-maintained rule tables that clean up scraped
// data: card-identifier rewrites, deck taxonomy keywords and overrides, point
// total to rank tables, set release dates and the standard set window.
//
// Rules live in a versioned YAML file. Every table that depends on order is a
// YAML sequence, so the file reads top to bottom in the order rules apply. A
// copy of the stock rules is embedded and used when no file is configured.
package curation
