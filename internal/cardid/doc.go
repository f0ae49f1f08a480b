// Package cardid rewrites the card identifiers scraped from deck lists into the
// ids used by the card catalog.
//
// mtgtop8 has encoded the same printing several ways over the years: reprint
// codes such as "abu", old set codes for cards reprinted later, and a few ids
// shared by unrelated cards. A Normalizer chains three curated tables (reprints,
// stale sets and spot fixes) until the id stops changing.
package cardid
