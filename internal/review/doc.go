// Package review collects the data problems a run could not fix on its own:
// decks without labels, card ids missing from the catalog, cards outside the
// standard sets and pages that failed to parse. The report is meant for a human
// who then extends the curation rules.
package review
