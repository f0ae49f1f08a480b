package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/navigator"
)

const (
	// EventLinkXPath selects the event anchors of the format page's event table.
	EventLinkXPath = "//table[@class='Stable'][2]//tr[@class='hover_tr']//a"
	// EventDateXPath selects the date cells of the same rows.
	EventDateXPath = "//table[@class='Stable'][2]//tr[@class='hover_tr']//td[@class='S10']"
)

// Page is the part of a loaded page the event extractor needs.
type Page interface {
	URL() string
	Elements(kind navigator.SelectorKind, selector string) ([]navigator.Element, error)
}

// ExtractEvents reads the events listed on one format page. Links are resolved to
// absolute URLs so they can be fetched directly and used as the event's identity.
func ExtractEvents(page Page) ([]event.Event, error) {
	anchors, err := page.Elements(navigator.ByXPath, EventLinkXPath)
	if err != nil {
		return nil, fmt.Errorf("selecting event links: %w", err)
	}
	dates, err := page.Elements(navigator.ByXPath, EventDateXPath)
	if err != nil {
		return nil, fmt.Errorf("selecting event dates: %w", err)
	}
	if len(anchors) != len(dates) {
		return nil, &StructuralParseError{
			URL:    page.URL(),
			Reason: fmt.Sprintf("%d event links but %d dates", len(anchors), len(dates)),
		}
	}

	base, err := url.Parse(page.URL())
	if err != nil {
		return nil, fmt.Errorf("parsing page url: %w", err)
	}

	events := make([]event.Event, 0, len(anchors))
	for i, a := range anchors {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return nil, &InvalidLinkError{URL: page.URL()}
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return nil, &InvalidLinkError{URL: page.URL(), Link: href}
		}
		events = append(events, event.NewEvent(a.Text(), base.ResolveReference(ref).String(), dates[i].Text()))
	}
	return events, nil
}

// ParseEventList parses a saved format page.
func ParseEventList(r io.Reader, pageURL string) ([]event.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	doc, err := navigator.NewDocument(pageURL, body)
	if err != nil {
		return nil, err
	}
	return ExtractEvents(doc)
}
