// Package crawler walks the paginated event list of a format page and collects the
// events newer than what is already stored.
//
// The walk stops at the first page that contains one of the most recently stored
// event links. This assumes the site lists events newest first; if the site ever
// reorders its listing the crawl may stop early or fetch pages it did not need.
// Nothing is written while crawling: the caller commits the returned events as one
// batch.
package crawler
