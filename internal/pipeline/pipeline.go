package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/mtgtop8-sync/internal/assemble"
	"github.com/pfrederiksen/mtgtop8-sync/internal/crawler"
	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/export"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/navigator"
	"github.com/pfrederiksen/mtgtop8-sync/internal/notifier"
	"github.com/pfrederiksen/mtgtop8-sync/internal/review"
	"github.com/pfrederiksen/mtgtop8-sync/internal/scraper"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// EventCrawler walks the paginated event list.
type EventCrawler interface {
	Synchronize(ctx context.Context, baseURL string, latestKnown event.LinkSet) ([]event.Event, error)
}

// PageFetcher loads a single page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*navigator.Document, error)
}

// CardSource returns catalog cards for set codes.
type CardSource interface {
	FetchSets(ctx context.Context, setCodes []string) ([]storage.Card, error)
}

// Uploader publishes exported files.
type Uploader interface {
	Upload(ctx context.Context, files []string) error
}

// Options configures a Pipeline.
type Options struct {
	// BaseURL is the first page of the event list.
	BaseURL string
	// EventRoot is prefixed to relative deck URLs.
	EventRoot string
	// CardSets overrides the catalog set list of the rules when not empty.
	CardSets []string
	// SettleDelay is waited between page fetches.
	SettleDelay time.Duration
	// DryRun parses everything but writes nothing.
	DryRun bool
}

// Pipeline wires the passes together. Optional collaborators may be nil:
// without a catalog SyncCards fails, without a writer Assemble exports
// nothing, and uploads and notifications are skipped when unset.
type Pipeline struct {
	store     *storage.Store
	crawler   EventCrawler
	fetcher   PageFetcher
	parser    *scraper.Parser
	catalog   CardSource
	rules     *curation.Rules
	assembler *assemble.Assembler
	checker   *review.Checker
	writer    *export.Writer
	uploader  Uploader
	notifier  notifier.Notifier
	opts      Options
	sleep     func(ctx context.Context, d time.Duration) error
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Store     *storage.Store
	Crawler   EventCrawler
	Fetcher   PageFetcher
	Parser    *scraper.Parser
	Catalog   CardSource
	Rules     *curation.Rules
	Assembler *assemble.Assembler
	Writer    *export.Writer
	Uploader  Uploader
	Notifier  notifier.Notifier
}

// New creates a Pipeline.
func New(deps Deps, opts Options) *Pipeline {
	return &Pipeline{
		store:     deps.Store,
		crawler:   deps.Crawler,
		fetcher:   deps.Fetcher,
		parser:    deps.Parser,
		catalog:   deps.Catalog,
		rules:     deps.Rules,
		assembler: deps.Assembler,
		checker:   review.NewChecker(deps.Rules, opts.EventRoot),
		writer:    deps.Writer,
		uploader:  deps.Uploader,
		notifier:  deps.Notifier,
		opts:      opts,
		sleep:     crawler.Sleep,
	}
}

// NewRunID returns an identifier used to correlate the logs of one run.
func NewRunID() string {
	return uuid.NewString()
}

func runLogger(runID, pass string) *logger.Logger {
	return logger.Default().With(logger.Fields{"run_id": runID, "pass": pass})
}

func (p *Pipeline) settle(ctx context.Context) error {
	return p.sleep(ctx, p.opts.SettleDelay)
}
