package scraper

import (
	"errors"
	"fmt"
)

// StructuralParseError reports a page whose markup does not yield consistent standings.
type StructuralParseError struct {
	URL     string
	Reason  string
	Names   int
	Ranks   int
	Players int
	Links   int
}

func (e *StructuralParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("structural parse error at %s: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("structural parse error at %s: names=%d ranks=%d players=%d links=%d",
		e.URL, e.Names, e.Ranks, e.Players, e.Links)
}

// MalformedTitleError reports a placeholder deck title such as a prize line.
type MalformedTitleError struct {
	URL   string
	Title string
}

func (e *MalformedTitleError) Error() string {
	return fmt.Sprintf("malformed deck title %q at %s", e.Title, e.URL)
}

// InvalidLinkError reports a deck link that is missing or not a deck-detail link.
type InvalidLinkError struct {
	URL  string
	Link string
}

func (e *InvalidLinkError) Error() string {
	if e.Link == "" {
		return fmt.Sprintf("missing deck link at %s", e.URL)
	}
	return fmt.Sprintf("invalid deck link %q at %s", e.Link, e.URL)
}

// InvalidDeckListError reports a deck list line that cannot be read.
type InvalidDeckListError struct {
	URL    string
	Line   string
	Reason string
}

func (e *InvalidDeckListError) Error() string {
	return fmt.Sprintf("invalid deck list line %q at %s: %s", e.Line, e.URL, e.Reason)
}

// IsPageError reports whether err is one of the page-level parse errors above.
// Such errors abort the page they came from, not the whole run.
func IsPageError(err error) bool {
	var (
		structural *StructuralParseError
		title      *MalformedTitleError
		link       *InvalidLinkError
		deckList   *InvalidDeckListError
	)
	return errors.As(err, &structural) ||
		errors.As(err, &title) ||
		errors.As(err, &link) ||
		errors.As(err, &deckList)
}
