package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	rules, err := curation.Default()
	require.NoError(t, err)
	return New(rules.Taxonomy)
}

func TestClassify(t *testing.T) {
	c := defaultClassifier(t)

	tests := []struct {
		name          string
		deckName      string
		deckID        int64
		wantArchetype string
		wantCategory  string
	}{
		{"later keyword rule wins", "Mono Green Stompy", 1, "stompy", "mono green"},
		{"case insensitive", "MONO GREEN stompy", 1, "stompy", "mono green"},
		{"two color guild", "Dimir Rogues", 2, "rogue", "dimir"},
		{"control", "Izzet Control", 3, "control", "izzet"},
		{"name override", "5c Sanctum", 4, "control", "5-color"},
		{"deck id archetype override", "Rakdos Midrange", 2452, "aggro", "rakdos"},
		{"deck id category override", "Pile", 360, "", "gruul"},
		{"later category rule wins", "Boros Izzet", 6, "", "izzet"},
		{"category without archetype", "Sultai", 8, "", "sultai"},
		{"nothing matches", "Xyz Pile", 5, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archetype, category := c.Classify(tt.deckName, tt.deckID)
			assert.Equal(t, tt.wantArchetype, archetype)
			assert.Equal(t, tt.wantCategory, category)
		})
	}
}

func TestClassify_OverridePrecedence(t *testing.T) {
	c := New(curation.TaxonomyRules{
		Archetypes: []curation.KeywordRule{
			{Label: "aggro", Keywords: []string{"burn"}},
			{Label: "control", Keywords: []string{"control"}},
		},
		ArchetypeByDeck: map[int64]string{7: "midrange"},
		ArchetypeByName: map[string]string{"Burn Control": "tempo"},
	})

	a, _ := c.Classify("Burn Control", 1)
	assert.Equal(t, "tempo", a, "name override beats keywords")

	a, _ = c.Classify("Burn Control", 7)
	assert.Equal(t, "tempo", a, "name override beats deck id override")

	a, _ = c.Classify("Red Burn", 7)
	assert.Equal(t, "midrange", a)

	a, _ = c.Classify("burn control deck", 1)
	assert.Equal(t, "control", a)
}

func TestFixName(t *testing.T) {
	c := defaultClassifier(t)

	assert.Equal(t, "Izzet Mill", c.FixName(930, "izzet milll"))
	assert.Equal(t, "Gruul Adventures", c.FixName(1, "Gruul Adventures"))
}

func TestLabel(t *testing.T) {
	c := defaultClassifier(t)

	l := c.Label(930, "ur ???")
	assert.Equal(t, Labels{Name: "Izzet Mill", Archetype: "mill", Category: "izzet"}, l)
	assert.True(t, l.Complete())

	assert.False(t, c.Label(5, "Xyz Pile").Complete())
}
