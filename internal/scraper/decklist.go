package scraper

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	SlotMain = "md"
	SlotSide = "sb"
)

// legacy set codes written with the digits first
var reversedSetCodes = map[string]string{
	"10m": "m10",
	"11m": "m11",
	"12m": "m12",
	"13m": "m13",
	"14m": "m14",
	"15m": "m15",
}

// DeckListLine is one card line of a deck page.
type DeckListLine struct {
	CardID   string
	Count    int
	Slot     string
	CardName string
}

// ParseDeckList extracts the card lines of a deck page. Card ids are read from the
// L14 span id, which encodes slot, set code and collector number followed by two
// characters of noise.
func (p *Parser) ParseDeckList(r io.Reader, pageURL string) ([]DeckListLine, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var lines []DeckListLine
	doc.Find("td.G14").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		var line DeckListLine
		line, err = deckListLine(td, pageURL)
		if err != nil {
			return false
		}
		lines = append(lines, line)
		return true
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func deckListLine(td *goquery.Selection, pageURL string) (DeckListLine, error) {
	text := strings.TrimSpace(td.Text())
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return DeckListLine{}, &InvalidDeckListError{URL: pageURL, Line: text, Reason: "empty line"}
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return DeckListLine{}, &InvalidDeckListError{URL: pageURL, Line: text, Reason: "count is not a number"}
	}

	span := td.Find("span.L14").First()
	id, ok := span.Attr("id")
	if !ok {
		return DeckListLine{}, &InvalidDeckListError{URL: pageURL, Line: text, Reason: "missing card id"}
	}
	slot, set, number, ok := SplitCardSpanID(id)
	if !ok {
		return DeckListLine{}, &InvalidDeckListError{URL: pageURL, Line: text, Reason: fmt.Sprintf("unreadable card id %q", id)}
	}

	return DeckListLine{
		CardID:   number + set,
		Count:    count,
		Slot:     slot,
		CardName: strings.TrimSpace(span.Text()),
	}, nil
}

// SplitCardSpanID decodes a deck page span id such as "mdeld26601" into slot "md",
// set "eld" and collector number "266".
func SplitCardSpanID(id string) (slot, set, number string, ok bool) {
	if len(id) < 8 {
		return "", "", "", false
	}
	id = id[:len(id)-2]
	slot, set, number = id[:2], id[2:5], id[5:]
	if slot != SlotMain && slot != SlotSide {
		return "", "", "", false
	}
	if fixed, found := reversedSetCodes[set]; found {
		set = fixed
	}
	return slot, set, number, true
}
