package event

import "sort"

// LinkSet is a set of event links.
type LinkSet map[string]struct{}

// NewLinkSet builds a LinkSet from links.
func NewLinkSet(links ...string) LinkSet {
	set := make(LinkSet, len(links))
	for _, l := range links {
		set[l] = struct{}{}
	}
	return set
}

// Contains reports whether link is in the set.
func (s LinkSet) Contains(link string) bool {
	_, ok := s[link]
	return ok
}

// IsUpToDate reports whether any of the collected events is one of the known
// links. The crawl treats such a page as the point where stored data begins.
func IsUpToDate(collected []Event, known LinkSet) bool {
	if len(known) == 0 {
		return false
	}
	for _, evt := range collected {
		if known.Contains(evt.Link) {
			return true
		}
	}
	return false
}

// DiffResult contains the events of a crawl that are not stored yet
type DiffResult struct {
	NewEvents []Event
	Known     int
}

// Diff compares crawled events against the stored links. Events repeated across
// pages are reported once. New events are ordered newest first, then by link.
func Diff(stored LinkSet, current []Event) *DiffResult {
	result := &DiffResult{NewEvents: make([]Event, 0)}

	seen := make(map[string]bool, len(current))
	for _, evt := range current {
		if seen[evt.Link] {
			continue
		}
		seen[evt.Link] = true

		if stored.Contains(evt.Link) {
			result.Known++
			continue
		}
		result.NewEvents = append(result.NewEvents, evt)
	}

	sort.SliceStable(result.NewEvents, func(i, j int) bool {
		a, b := result.NewEvents[i], result.NewEvents[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Link < b.Link
	})

	return result
}
