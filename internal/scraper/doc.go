// Package scraper extracts structured data from mtgtop8 pages.
//
// Three page types are understood: the format page listing events, an event page
// with its standings, and a deck page with the card list. Event pages come in two
// historical layouts (point totals or placements) which are detected from the
// winner's rank and parsed by separate functions. Any inconsistency is reported as
// a typed error carrying the page URL so the page can be reviewed by hand.
package scraper
