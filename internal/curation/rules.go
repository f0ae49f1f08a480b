package curation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the only rules file version this build understands.
const Version = 1

//go:embed default_rules.yaml
var defaultRules []byte

// Rules is the full set of curated tables.
type Rules struct {
	Version  int           `yaml:"version"`
	CardIDs  CardIDRules   `yaml:"card_ids"`
	Taxonomy TaxonomyRules `yaml:"taxonomy"`
	Ranks    RankRules     `yaml:"ranks"`
	Releases ReleaseRules  `yaml:"releases"`
	Standard StandardRules `yaml:"standard"`
	Catalog  CatalogRules  `yaml:"catalog"`
}

// Rewrite maps one card identifier to another. An empty To marks the card as
// excluded from analysis.
type Rewrite struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// SpotFix rewrites an identifier and also pins the card's name and color.
// An empty Color is a real value (colorless).
type SpotFix struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// CardIDRules holds the three identifier tables, applied in this order.
type CardIDRules struct {
	Reprints  []Rewrite `yaml:"reprints"`
	StaleSets []Rewrite `yaml:"stale_sets"`
	SpotFixes []SpotFix `yaml:"spot_fixes"`
}

// KeywordRule assigns Label to any deck whose name contains one of Keywords.
type KeywordRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// TaxonomyRules drives deck classification.
type TaxonomyRules struct {
	Archetypes      []KeywordRule     `yaml:"archetypes"`
	Categories      []KeywordRule     `yaml:"categories"`
	DeckNames       map[int64]string  `yaml:"deck_names"`
	ArchetypeByDeck map[int64]string  `yaml:"archetype_by_deck"`
	CategoryByDeck  map[int64]string  `yaml:"category_by_deck"`
	ArchetypeByName map[string]string `yaml:"archetype_by_name"`
}

// PointsRank maps a point total such as "9 pts" to a placement.
type PointsRank struct {
	Points string `yaml:"points"`
	Rank   string `yaml:"rank"`
}

// RankRules converts point totals and placement ranges into ranks.
type RankRules struct {
	ByEvent   map[int64][]PointsRank `yaml:"by_event"`
	Composite map[string]string      `yaml:"composite"`
}

// Release is a set and the day it became legal.
type Release struct {
	Date time.Time `yaml:"date"`
	Name string    `yaml:"name"`
}

// ReleaseRules labels each event with the most recent set at its date.
type ReleaseRules struct {
	BeforeFirst string    `yaml:"before_first"`
	Sets        []Release `yaml:"sets"`
}

// StandardRules describe the legal set window checked during review.
type StandardRules struct {
	Sets               []string  `yaml:"sets"`
	Since              time.Time `yaml:"since"`
	ExpectedExceptions []string  `yaml:"expected_exceptions"`
}

// CatalogRules lists the set codes fetched from the card catalog.
type CatalogRules struct {
	Sets []string `yaml:"sets"`
}

// Default returns the embedded stock rules.
func Default() (*Rules, error) {
	r, err := Parse(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded rules: %w", err)
	}
	return r, nil
}

// Load reads rules from path. An empty path or a missing file yields the
// embedded defaults.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a rules document. Unknown keys are rejected.
func Parse(data []byte) (*Rules, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Rules
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(r.Releases.Sets, func(a, b Release) int {
		return a.Date.Compare(b.Date)
	})
	return &r, nil
}

// Validate reports every problem in r at once.
func (r *Rules) Validate() error {
	var errs []error
	if r.Version != Version {
		errs = append(errs, fmt.Errorf("unsupported rules version %d", r.Version))
	}
	errs = append(errs, checkRewrites("reprints", r.CardIDs.Reprints)...)
	errs = append(errs, checkRewrites("stale_sets", r.CardIDs.StaleSets)...)

	seen := make(map[string]bool, len(r.CardIDs.SpotFixes))
	for i, f := range r.CardIDs.SpotFixes {
		if f.From == "" {
			errs = append(errs, fmt.Errorf("spot_fixes[%d]: empty from", i))
		}
		if seen[f.From] {
			errs = append(errs, fmt.Errorf("spot_fixes[%d]: duplicate from %q", i, f.From))
		}
		seen[f.From] = true
	}

	errs = append(errs, checkKeywords("archetypes", r.Taxonomy.Archetypes)...)
	errs = append(errs, checkKeywords("categories", r.Taxonomy.Categories)...)

	for id, table := range r.Ranks.ByEvent {
		for i, pr := range table {
			if pr.Points == "" || pr.Rank == "" {
				errs = append(errs, fmt.Errorf("ranks.by_event[%d][%d]: points and rank are required", id, i))
			}
		}
	}
	for i, rel := range r.Releases.Sets {
		if rel.Date.IsZero() || rel.Name == "" {
			errs = append(errs, fmt.Errorf("releases.sets[%d]: date and name are required", i))
		}
	}
	return errors.Join(errs...)
}

func checkRewrites(table string, rewrites []Rewrite) []error {
	var errs []error
	seen := make(map[string]bool, len(rewrites))
	for i, rw := range rewrites {
		if rw.From == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: empty from", table, i))
			continue
		}
		if seen[rw.From] {
			errs = append(errs, fmt.Errorf("%s[%d]: duplicate from %q", table, i, rw.From))
		}
		seen[rw.From] = true
	}
	return errs
}

func checkKeywords(table string, rules []KeywordRule) []error {
	var errs []error
	for i, kr := range rules {
		if kr.Label == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: empty label", table, i))
		}
		if len(kr.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("%s[%d] %q: no keywords", table, i, kr.Label))
		}
		for _, kw := range kr.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Errorf("%s[%d] %q: blank keyword", table, i, kr.Label))
			}
		}
	}
	return errs
}

// LatestSet returns the name of the newest set released on or before date.
func (r *Rules) LatestSet(date time.Time) string {
	label := r.Releases.BeforeFirst
	for _, rel := range r.Releases.Sets {
		if date.Before(rel.Date) {
			break
		}
		label = rel.Name
	}
	return label
}

// InStandard reports whether a card id belongs to one of the standard sets.
func (r *Rules) InStandard(cardID string) bool {
	for _, set := range r.Standard.Sets {
		if strings.Contains(cardID, set) {
			return true
		}
	}
	return false
}

// StandardApplies reports whether the standard set check covers an event on date.
func (r *Rules) StandardApplies(date time.Time) bool {
	return !r.Standard.Since.IsZero() && !date.Before(r.Standard.Since)
}

// Marshal renders r back to YAML.
func (r *Rules) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding rules: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding rules: %w", err)
	}
	return buf.Bytes(), nil
}
