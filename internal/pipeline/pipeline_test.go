package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/mtgtop8-sync/internal/assemble"
	"github.com/pfrederiksen/mtgtop8-sync/internal/crawler"
	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
	"github.com/pfrederiksen/mtgtop8-sync/internal/export"
	"github.com/pfrederiksen/mtgtop8-sync/internal/navigator"
	"github.com/pfrederiksen/mtgtop8-sync/internal/notifier"
	"github.com/pfrederiksen/mtgtop8-sync/internal/scraper"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "fixtures", name))
	require.NoError(t, err)
	return data
}

// newSite serves the saved pages the way mtgtop8 lays them out: the format
// page paginates through POSTed cp values, event pages are /event?e=N and deck
// pages add a d parameter. Event 38 is a page without standings.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	formatPages := map[string][]byte{
		"1": loadFixture(t, "format_page1.html"),
		"2": loadFixture(t, "format_page2.html"),
		"3": loadFixture(t, "format_page3.html"),
	}
	pointsPage := loadFixture(t, "event_points.html")
	rankPage := loadFixture(t, "event_rank.html")
	deckPage := loadFixture(t, "decklist.html")

	mux := http.NewServeMux()
	mux.HandleFunc("/format", func(w http.ResponseWriter, r *http.Request) {
		page := "1"
		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err == nil {
				page = r.PostForm.Get("cp")
			}
		}
		body, ok := formatPages[page]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	})
	mux.HandleFunc("/event", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		q := r.URL.Query()
		switch {
		case q.Get("d") != "":
			_, _ = w.Write(deckPage)
		case q.Get("e") == "40":
			_, _ = w.Write(pointsPage)
		case q.Get("e") == "38":
			_, _ = w.Write([]byte("<html><body><div class=\"S14\">Results pending</div></body></html>"))
		default:
			_, _ = w.Write(rankPage)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fakeCatalog struct {
	requested [][]string
}

func (f *fakeCatalog) FetchSets(_ context.Context, sets []string) ([]storage.Card, error) {
	f.requested = append(f.requested, sets)
	return []storage.Card{
		{SetNumber: "266", SetCode: "eld", Name: "Forest", Color: ""},
		{SetNumber: "155", SetCode: "eld", Name: "Lovestruck Beast // Heart's Desire", CMC: 3, Color: "G"},
		{SetNumber: "6", SetCode: "m21", Name: "Baneslayer Angel", CMC: 5, Color: "W"},
		{SetNumber: "204", SetCode: "m21", Name: "Scavenging Ooze", CMC: 2, Color: "G"},
		{SetNumber: "92", SetCode: "abu", Name: "Forest", Color: ""},
	}, nil
}

type fakeUploader struct {
	files []string
}

func (f *fakeUploader) Upload(_ context.Context, files []string) error {
	f.files = append(f.files, files...)
	return nil
}

type harness struct {
	pipeline *Pipeline
	store    *storage.Store
	catalog  *fakeCatalog
	uploader *fakeUploader
	notices  *bytes.Buffer
	export   string
}

func newHarness(t *testing.T, dryRun bool) *harness {
	t.Helper()
	srv := newSite(t)
	ctx := context.Background()

	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "links.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() }) //nolint:errcheck

	rules, err := curation.Default()
	require.NoError(t, err)
	asm, err := assemble.NewFromRules(rules)
	require.NoError(t, err)

	nav := navigator.NewHTTP(navigator.Options{
		UserAgent:      "mtgtop8-sync-test",
		Timeout:        5 * time.Second,
		MaxRetries:     1,
		InitialBackoff: time.Millisecond,
	})

	h := &harness{
		store:    store,
		catalog:  &fakeCatalog{},
		uploader: &fakeUploader{},
		notices:  &bytes.Buffer{},
		export:   filepath.Join(t.TempDir(), "flat_files"),
	}
	h.pipeline = New(Deps{
		Store:     store,
		Crawler:   crawler.New(nav, crawler.Options{}),
		Fetcher:   nav,
		Parser:    scraper.NewParser("ST"),
		Catalog:   h.catalog,
		Rules:     rules,
		Assembler: asm,
		Writer:    export.NewWriter(h.export),
		Uploader:  h.uploader,
		Notifier:  notifier.NewDryRunNotifier(h.notices),
	}, Options{
		BaseURL:   srv.URL + "/format?f=ST",
		EventRoot: srv.URL + "/event",
		DryRun:    dryRun,
	})
	return h
}

func (h *harness) count(t *testing.T, kind storage.TableKind) int {
	t.Helper()
	n, err := h.store.Count(context.Background(), kind)
	require.NoError(t, err)
	return n
}

func TestRun_FirstSync(t *testing.T) {
	h := newHarness(t, false)

	res, err := h.pipeline.Run(context.Background(), RunOptions{SyncCards: true, Assemble: true})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 6, res.Events.Crawled)
	assert.Equal(t, 6, res.NewEvents())
	assert.Contains(t, res.Events.NewEvents[0].Link, "e=40", "new events are newest first")

	assert.Equal(t, 6, h.count(t, storage.TableEvent))
	assert.Equal(t, 8, h.count(t, storage.TablePilot))
	assert.Equal(t, 28, h.count(t, storage.TableDeck))
	assert.Equal(t, 140, h.count(t, storage.TableDeckList))
	assert.Equal(t, 5, h.count(t, storage.TableCard))

	assert.Equal(t, 5, res.Decks.Pages)
	assert.Equal(t, 1, res.Decks.Skipped)
	assert.Equal(t, 28, res.DeckLists.Pages)
	require.Len(t, res.Review.ParseFailures, 1)
	assert.Contains(t, res.Review.ParseFailures[0].URL, "e=38")

	require.NotNil(t, res.Assembled)
	assert.Equal(t, 140, res.Assembled.Rows)
	assert.Empty(t, res.Review.UnresolvedCards)
	assert.Len(t, res.Assembled.Files, 6)
	assert.Equal(t, res.Assembled.Files, h.uploader.files)
	assert.FileExists(t, filepath.Join(h.export, "full_table.csv"))

	assert.Contains(t, h.notices.String(), "--- Post 6/6 ---")
	assert.Equal(t, [][]string{h.pipeline.CardSets()}, h.catalog.requested)
}

func TestRun_SecondSyncIsIdempotent(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	_, err := h.pipeline.Run(ctx, RunOptions{})
	require.NoError(t, err)
	before := map[storage.TableKind]int{}
	for _, kind := range storage.Tables {
		before[kind] = h.count(t, kind)
	}
	h.notices.Reset()

	res, err := h.pipeline.Run(ctx, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Events.Crawled, "crawl stops on the page holding the newest stored event")
	assert.Zero(t, res.NewEvents())
	assert.Zero(t, res.Decks.Pages)
	assert.Equal(t, 1, res.Decks.Skipped, "the unparsable event is retried")
	assert.Zero(t, res.DeckLists.Pages)
	for _, kind := range storage.Tables {
		assert.Equal(t, before[kind], h.count(t, kind), kind)
	}
	assert.Empty(t, h.notices.String())
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	h := newHarness(t, true)

	res, err := h.pipeline.Run(context.Background(), RunOptions{SyncCards: true, Assemble: true})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, 6, res.NewEvents())
	for _, kind := range storage.Tables {
		assert.Zero(t, h.count(t, kind), kind)
	}
	assert.Empty(t, res.Assembled.Files)
	assert.NoDirExists(t, h.export)
	assert.Empty(t, h.notices.String())
}

func TestSyncCards_WithoutCatalog(t *testing.T) {
	h := newHarness(t, false)
	h.pipeline.catalog = nil

	_, err := h.pipeline.SyncCards(context.Background(), NewRunID())
	assert.ErrorIs(t, err, ErrNoCatalog)
}

func TestCardSets(t *testing.T) {
	h := newHarness(t, false)
	assert.Contains(t, h.pipeline.CardSets(), "eld")

	h.pipeline.opts.CardSets = []string{"khm"}
	assert.Equal(t, []string{"khm"}, h.pipeline.CardSets())
}

func TestRun_Cancelled(t *testing.T) {
	h := newHarness(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := h.pipeline.Run(ctx, RunOptions{})
	require.Error(t, err)
	assert.Nil(t, res.Events)
}
