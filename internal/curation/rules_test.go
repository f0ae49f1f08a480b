package curation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDefault(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, Version, r.Version)
	assert.Equal(t, Rewrite{From: "092abu", To: "266eld"}, r.CardIDs.Reprints[0])
	assert.Contains(t, r.CardIDs.StaleSets, Rewrite{From: "001unk", To: ""})
	assert.Contains(t, r.CardIDs.SpotFixes, SpotFix{From: "160bng", To: "246thb", Name: "Temple of Enlightenment", Color: ""})
	assert.Equal(t, "control", r.Taxonomy.ArchetypeByName["5c Sanctum"])
	assert.Equal(t, "5", r.Ranks.Composite["5-8"])
	assert.Equal(t, []PointsRank{{Points: "11 pts", Rank: "1"}, {Points: "9 pts", Rank: "2"}}, r.Ranks.ByEvent[22][:2])
	assert.Contains(t, r.Catalog.Sets, "eld")
	assert.Equal(t, day("2020-09-29"), r.Standard.Since)
}

func TestDefault_KeywordOrderIsPreserved(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	index := map[string]int{}
	for i, kr := range r.Taxonomy.Archetypes {
		index[kr.Label] = i
	}
	// stompy is listed after aggro so it wins for "Mono Green Stompy"
	assert.Less(t, index["aggro"], index["stompy"])
}

func TestLatestSet(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	tests := []struct {
		date string
		want string
	}{
		{"2020-09-24", "Ikoria"},
		{"2020-09-25", "Zendikar Rising"},
		{"2021-02-04", "Zendikar Rising"},
		{"2021-02-05", "Kaldheim"},
		{"2021-06-01", "Kaldheim"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, r.LatestSet(day(tt.date)))
		})
	}
}

func TestStandardWindow(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.True(t, r.InStandard("266eld"))
	assert.True(t, r.InStandard("204m21"))
	assert.False(t, r.InStandard("092abu"))

	assert.False(t, r.StandardApplies(day("2020-09-28")))
	assert.True(t, r.StandardApplies(day("2020-09-29")))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "wrong version",
			doc:  "version: 2\n",
			want: "unsupported rules version 2",
		},
		{
			name: "unknown key",
			doc:  "version: 1\nbogus: true\n",
			want: "field bogus not found",
		},
		{
			name: "duplicate rewrite",
			doc:  "version: 1\ncard_ids:\n  reprints:\n    - {from: a, to: b}\n    - {from: a, to: c}\n",
			want: `reprints[1]: duplicate from "a"`,
		},
		{
			name: "empty keyword list",
			doc:  "version: 1\ntaxonomy:\n  archetypes:\n    - {label: aggro, keywords: []}\n",
			want: `archetypes[0] "aggro": no keywords`,
		},
		{
			name: "release without date",
			doc:  "version: 1\nreleases:\n  sets:\n    - {name: Kaldheim}\n",
			want: "releases.sets[0]: date and name are required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_SortsReleases(t *testing.T) {
	doc := `version: 1
releases:
  before_first: Ikoria
  sets:
    - {date: 2021-02-05, name: Kaldheim}
    - {date: 2020-09-25, name: Zendikar Rising}
`
	r, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Zendikar Rising", r.Releases.Sets[0].Name)
	assert.Equal(t, "Zendikar Rising", r.LatestSet(day("2020-12-01")))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		r, err := Load(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.NotEmpty(t, r.CardIDs.Reprints)
	})

	t.Run("file round trips through Marshal", func(t *testing.T) {
		def, err := Default()
		require.NoError(t, err)
		data, err := def.Marshal()
		require.NoError(t, err)

		path := filepath.Join(dir, "rules.yaml")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		r, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, def.CardIDs, r.CardIDs)
		assert.Equal(t, def.Taxonomy, r.Taxonomy)
		assert.Equal(t, def.LatestSet(day("2021-01-01")), r.LatestSet(day("2021-01-01")))
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: [\n"), 0o600))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing rules")
	})
}
