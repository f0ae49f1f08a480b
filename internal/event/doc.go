// Package event provides the tournament Event record scraped from mtgtop8 and the
// helpers the incremental crawl relies on: date parsing for the site's day-first
// dates, the up-to-date check against previously stored links and a diff that
// yields only events not seen before.
package event
