package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

func testNormalizer() *Normalizer {
	return New(curation.RankRules{
		ByEvent: map[int64][]curation.PointsRank{
			22: {
				{Points: "11 pts", Rank: "1"},
				{Points: "9 pts", Rank: "2"},
				{Points: "4 pts", Rank: "5-8"},
			},
		},
		Composite: map[string]string{"5-8": "5", "3-4": "3"},
	})
}

func TestRank(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name    string
		eventID int64
		rank    string
		want    string
	}{
		{"points in table", 22, "11 pts", "1"},
		{"points then composite", 22, "4 pts", "5"},
		{"points missing from table", 22, "3 pts", "3 pts"},
		{"event without table", 23, "9 pts", "9 pts"},
		{"composite range", 23, "3-4", "3"},
		{"plain rank", 23, "2", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Rank(tt.eventID, tt.rank))
		})
	}
}

func TestNormalize(t *testing.T) {
	n := testNormalizer()
	decks := []storage.Deck{
		{ID: 1, EventID: 22, Rank: "9 pts"},
		{ID: 2, EventID: 30, Rank: "5-8"},
	}

	got := n.Normalize(decks)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Rank)
	assert.Equal(t, "5", got[1].Rank)
	assert.Equal(t, "9 pts", decks[0].Rank, "input untouched")
}

func TestPending(t *testing.T) {
	n := testNormalizer()
	decks := []storage.Deck{
		{ID: 1, EventID: 22, Rank: "9 pts"},
		{ID: 2, EventID: 31, Rank: "7 pts"},
		{ID: 3, EventID: 31, Rank: "1"},
	}

	pending := n.Pending(decks)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].ID)
}

func TestDefaultRules(t *testing.T) {
	rules, err := curation.Default()
	require.NoError(t, err)
	n := New(rules.Ranks)

	assert.Equal(t, "1", n.Rank(22, "11 pts"))
	assert.Equal(t, "5", n.Rank(1, "5-8"))
}
