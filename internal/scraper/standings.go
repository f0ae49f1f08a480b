package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Layout identifies how an event page expresses placements
type Layout int

const (
	// LayoutRank pages list placements as alternating rank and deck nodes.
	LayoutRank Layout = iota
	// LayoutPoints pages give every deck a point total like "9 pts".
	LayoutPoints
)

func (l Layout) String() string {
	switch l {
	case LayoutPoints:
		return "points"
	default:
		return "rank"
	}
}

// trailing S14 nodes on every event page that are not placements
const trailingNodes = 3

var (
	malformedTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\$[0-9]* \(.*\)$`),
		regexp.MustCompile(`^[0-9]* TIX$`),
	}
	pointsPattern = regexp.MustCompile(`^[0-9]+ pts$`)
	rankPattern   = regexp.MustCompile(`^[0-9]+(-[0-9]+)?$`)
	skippedRanks  = map[string]bool{"close": true, "Companion card": true}
)

// Standings holds the parallel columns extracted from one event page.
// All four slices have the same length.
type Standings struct {
	URL     string
	Layout  Layout
	Names   []string
	Ranks   []string
	Players []string
	Links   []string
}

// Placement is one row of Standings.
type Placement struct {
	Player string
	Link   string
	Name   string
	Rank   string
}

// Len returns the number of placements.
func (s *Standings) Len() int {
	return len(s.Names)
}

// Placements zips the columns into rows.
func (s *Standings) Placements() []Placement {
	out := make([]Placement, s.Len())
	for i := range out {
		out[i] = Placement{
			Player: s.Players[i],
			Link:   s.Links[i],
			Name:   s.Names[i],
			Rank:   s.Ranks[i],
		}
	}
	return out
}

// Parser parses event and deck pages for one format
type Parser struct {
	format      string
	linkPattern *regexp.Regexp
}

// NewParser creates a parser expecting deck links of the given format code ("ST").
func NewParser(format string) *Parser {
	if format == "" {
		format = "ST"
	}
	return &Parser{
		format:      format,
		linkPattern: regexp.MustCompile(`^\?e=.*&d=.*&f=` + regexp.QuoteMeta(format)),
	}
}

// Format returns the format code.
func (p *Parser) Format() string {
	return p.format
}

// DetectLayout picks the page layout from the winner's rank token.
func DetectLayout(winnerRank string) Layout {
	if pointsPattern.MatchString(strings.TrimSpace(winnerRank)) {
		return LayoutPoints
	}
	return LayoutRank
}

// IsMalformedTitle reports whether name is a prize placeholder rather than a deck name.
func IsMalformedTitle(name string) bool {
	for _, re := range malformedTitlePatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// ParseStandings extracts the standings of an event page.
func (p *Parser) ParseStandings(r io.Reader, pageURL string) (*Standings, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	st := &Standings{URL: pageURL}

	name, rank, link, err := winner(doc, pageURL)
	if err != nil {
		return nil, err
	}
	if IsMalformedTitle(name) {
		return nil, &MalformedTitleError{URL: pageURL, Title: name}
	}
	st.Names = append(st.Names, name)
	st.Ranks = append(st.Ranks, rank)
	st.Links = append(st.Links, link)

	st.Layout = DetectLayout(rank)
	var names, ranks, links []string
	switch st.Layout {
	case LayoutPoints:
		names, ranks, links, err = p.pointsPlacements(doc, pageURL)
	default:
		names, ranks, links, err = p.rankPlacements(doc, pageURL)
	}
	if err != nil {
		return nil, err
	}
	st.Names = append(st.Names, names...)
	st.Ranks = append(st.Ranks, ranks...)
	st.Links = append(st.Links, links...)

	st.Players = players(doc, len(st.Names))

	if !equalLength(st.Names, st.Ranks, st.Players, st.Links) {
		return nil, &StructuralParseError{
			URL:     pageURL,
			Names:   len(st.Names),
			Ranks:   len(st.Ranks),
			Players: len(st.Players),
			Links:   len(st.Links),
		}
	}
	return st, nil
}

// winner reads the first placement, which uses its own markup. Older pages put the
// rank in the second W12 node; newer ones use a W14 node for the rank and the next
// W14 for the deck.
func winner(doc *goquery.Document, pageURL string) (name, rank, link string, err error) {
	w12 := doc.Find("div.W12")
	w14 := doc.Find("div.W14")

	if w12.Length() > 1 && w14.Length() > 0 {
		if a := w14.Eq(0).Find("a").First(); a.Length() > 0 {
			href, _ := a.Attr("href")
			return strings.TrimSpace(a.Text()), strings.TrimSpace(w12.Eq(1).Text()), href, nil
		}
	}
	if w14.Length() > 1 {
		if a := w14.Eq(1).Find("a").First(); a.Length() > 0 {
			href, _ := a.Attr("href")
			return strings.TrimSpace(a.Text()), strings.TrimSpace(w14.Eq(0).Text()), href, nil
		}
	}
	return "", "", "", &StructuralParseError{URL: pageURL, Reason: "winner not found"}
}

func placementNodes(doc *goquery.Document) *goquery.Selection {
	s14 := doc.Find("div.S14")
	if s14.Length() <= trailingNodes {
		return s14.Slice(0, 0)
	}
	return s14.Slice(0, s14.Length()-trailingNodes)
}

func (p *Parser) pointsPlacements(doc *goquery.Document, pageURL string) (names, ranks, links []string, err error) {
	placementNodes(doc).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var name, link string
		name, link, err = p.deckCell(s, pageURL)
		if err != nil {
			return false
		}
		names = append(names, name)
		links = append(links, link)
		return true
	})
	if err != nil {
		return nil, nil, nil, err
	}

	doc.Find("div.S12").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if skippedRanks[text] {
			return true
		}
		if !pointsPattern.MatchString(text) {
			err = &StructuralParseError{URL: pageURL, Reason: fmt.Sprintf("malformed points %q", text)}
			return false
		}
		ranks = append(ranks, text)
		return true
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return names, ranks, links, nil
}

func (p *Parser) rankPlacements(doc *goquery.Document, pageURL string) (names, ranks, links []string, err error) {
	placementNodes(doc).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i%2 == 0 {
			text := strings.TrimSpace(s.Text())
			if !rankPattern.MatchString(text) {
				return false
			}
			ranks = append(ranks, text)
			return true
		}
		var name, link string
		name, link, err = p.deckCell(s, pageURL)
		if err != nil {
			return false
		}
		names = append(names, name)
		links = append(links, link)
		return true
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return names, ranks, links, nil
}

func (p *Parser) deckCell(s *goquery.Selection, pageURL string) (name, link string, err error) {
	name = strings.TrimSpace(s.Text())
	if IsMalformedTitle(name) {
		return "", "", &MalformedTitleError{URL: pageURL, Title: name}
	}
	href, ok := s.Find("a").First().Attr("href")
	if !ok {
		return "", "", &InvalidLinkError{URL: pageURL}
	}
	if !p.linkPattern.MatchString(href) {
		return "", "", &InvalidLinkError{URL: pageURL, Link: href}
	}
	return name, href, nil
}

// players returns the first n player names in page order.
func players(doc *goquery.Document, n int) []string {
	out := make([]string, 0, n)
	doc.Find("div.G11").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(out) == n {
			return false
		}
		a := s.Find("a").First()
		if a.Length() == 0 {
			a = s
		}
		out = append(out, strings.TrimSpace(a.Text()))
		return true
	})
	return out
}

func equalLength(columns ...[]string) bool {
	for _, c := range columns[1:] {
		if len(c) != len(columns[0]) {
			return false
		}
	}
	return true
}
