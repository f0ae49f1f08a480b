package scraper

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../testdata/fixtures/"

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(fixtureDir + name)
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return string(data)
}

func assertParallel(t *testing.T, st *Standings, want int) {
	t.Helper()
	assert.Len(t, st.Names, want)
	assert.Len(t, st.Ranks, want)
	assert.Len(t, st.Players, want)
	assert.Len(t, st.Links, want)
}

func TestParseStandings_PointsLayout(t *testing.T) {
	p := NewParser("ST")
	html := loadFixture(t, "event_points.html")

	st, err := p.ParseStandings(strings.NewReader(html), "https://www.mtgtop8.com/event?e=22&f=ST")
	require.NoError(t, err)

	assert.Equal(t, LayoutPoints, st.Layout)
	assertParallel(t, st, 8)
	assert.Equal(t, []string{"11 pts", "9 pts", "8 pts", "7 pts", "6 pts", "5 pts", "4 pts", "4 pts"}, st.Ranks)
	assert.Equal(t, "Mono Green Stompy", st.Names[0])
	assert.Equal(t, "?e=22&d=401&f=ST", st.Links[0])
	assert.Equal(t, "Jane Doe", st.Players[0])
	assert.Equal(t, "Noor Khan", st.Players[7])
}

func TestParseStandings_RankLayout(t *testing.T) {
	p := NewParser("ST")
	html := loadFixture(t, "event_rank.html")

	st, err := p.ParseStandings(strings.NewReader(html), "https://www.mtgtop8.com/event?e=30&f=ST")
	require.NoError(t, err)

	assert.Equal(t, LayoutRank, st.Layout)
	assertParallel(t, st, 5)
	assert.Equal(t, []string{"1", "2", "3-4", "3-4", "5-8"}, st.Ranks)
	assert.Equal(t, []string{"Gruul Adventures", "Dimir Rogues", "Temur Ramp", "Mono Green Stompy", "Rakdos Sacrifice"}, st.Names)

	rows := st.Placements()
	require.Len(t, rows, 5)
	assert.Equal(t, Placement{Player: "arenaHandle99", Link: "?e=30&d=503&f=ST", Name: "Temur Ramp", Rank: "3-4"}, rows[2])
}

func TestParseStandings_Errors(t *testing.T) {
	points := loadFixture(t, "event_points.html")
	rank := loadFixture(t, "event_rank.html")

	tests := []struct {
		name   string
		html   string
		target interface{}
	}{
		{
			name:   "malformed title",
			html:   strings.Replace(points, "Dimir Rogues", "$500 (cash)", 1),
			target: new(*MalformedTitleError),
		},
		{
			name:   "tix title",
			html:   strings.Replace(rank, "Temur Ramp", "40 TIX", 1),
			target: new(*MalformedTitleError),
		},
		{
			name:   "link for another format",
			html:   strings.Replace(points, "?e=22&d=403&f=ST", "?e=22&d=403&f=MO", 1),
			target: new(*InvalidLinkError),
		},
		{
			name:   "missing link",
			html:   strings.Replace(rank, `<a href="?e=30&d=502&f=ST">Dimir Rogues</a>`, "Dimir Rogues", 1),
			target: new(*InvalidLinkError),
		},
		{
			name:   "malformed points",
			html:   strings.Replace(points, "7 pts", "7 points", 1),
			target: new(*StructuralParseError),
		},
		{
			name:   "missing points entry",
			html:   strings.Replace(points, `<div class="S12">6 pts</div>`, "", 1),
			target: new(*StructuralParseError),
		},
		{
			name:   "too few players",
			html:   strings.Replace(strings.Replace(rank, `<div class="G11"><a>Extra player link</a></div>`, "", 1), `<div class="G11"><a>Tom Hughes</a></div>`, "", 1),
			target: new(*StructuralParseError),
		},
		{
			name:   "no winner",
			html:   "<html><body><div class=\"S14\">nothing</div></body></html>",
			target: new(*StructuralParseError),
		},
	}

	p := NewParser("ST")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseStandings(strings.NewReader(tt.html), "https://www.mtgtop8.com/event?e=1&f=ST")
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "unexpected error type %T: %v", err, err)
			assert.True(t, IsPageError(err))
			assert.Contains(t, err.Error(), "e=1&f=ST")
		})
	}
}

func TestDetectLayout(t *testing.T) {
	tests := map[string]Layout{
		"11 pts": LayoutPoints,
		" 9 pts": LayoutPoints,
		"1":      LayoutRank,
		"5-8":    LayoutRank,
		"pts":    LayoutRank,
	}
	for rank, want := range tests {
		if got := DetectLayout(rank); got != want {
			t.Errorf("DetectLayout(%q) = %v, want %v", rank, got, want)
		}
	}
}

func TestIsMalformedTitle(t *testing.T) {
	tests := map[string]bool{
		"$1000 (Top 8)":     true,
		"$ (prize)":         true,
		"150 TIX":           true,
		"Mono Green Stompy": false,
		"$1000 Top 8":       false,
		"TIX Burn":          false,
	}
	for title, want := range tests {
		if got := IsMalformedTitle(title); got != want {
			t.Errorf("IsMalformedTitle(%q) = %v, want %v", title, got, want)
		}
	}
}

func TestIsPageError(t *testing.T) {
	assert.False(t, IsPageError(errors.New("network down")))
	assert.True(t, IsPageError(&InvalidDeckListError{URL: "u", Line: "x", Reason: "r"}))
}

func TestLayoutString(t *testing.T) {
	assert.Equal(t, "points", LayoutPoints.String())
	assert.Equal(t, "rank", LayoutRank.String())
}
