package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/pfrederiksen/mtgtop8-sync/internal/assemble"
	"github.com/pfrederiksen/mtgtop8-sync/internal/catalog"
	"github.com/pfrederiksen/mtgtop8-sync/internal/config"
	"github.com/pfrederiksen/mtgtop8-sync/internal/crawler"
	"github.com/pfrederiksen/mtgtop8-sync/internal/curation"
	"github.com/pfrederiksen/mtgtop8-sync/internal/export"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/navigator"
	"github.com/pfrederiksen/mtgtop8-sync/internal/notifier"
	"github.com/pfrederiksen/mtgtop8-sync/internal/pipeline"
	"github.com/pfrederiksen/mtgtop8-sync/internal/scraper"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// catalogDelay keeps card catalog requests within the rate the API asks for.
const catalogDelay = 100 * time.Millisecond

// Overrides are command-line values applied on top of the loaded configuration.
// Empty strings keep the configured value.
type Overrides struct {
	ConfigPath string
	DBPath     string
	RulesPath  string
	ExportDir  string
	Notify     string
	DryRun     bool
	Verbose    bool
}

// Module provides a *pipeline.Pipeline and everything it needs. It expects an
// Overrides value to be supplied.
var Module = fx.Options(
	fx.Provide(LoadConfig),
	fx.Provide(LoadRules),
	fx.Provide(OpenStore),
	// scraping
	fx.Provide(NewNavigator),
	fx.Provide(NewCrawler),
	fx.Provide(NewParser),
	// curation
	fx.Provide(assemble.NewFromRules),
	// outputs
	fx.Provide(NewCatalog),
	fx.Provide(NewWriter),
	fx.Provide(NewUploader),
	fx.Provide(NewNotifier),
	fx.Provide(NewPipeline),
	fx.Invoke(ConfigureLogger),
)

// LoadConfig reads the configuration file and environment, then applies o.
func LoadConfig(o Overrides) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.RulesPath != "" {
		cfg.RulesPath = o.RulesPath
	}
	if o.ExportDir != "" {
		cfg.ExportDir = o.ExportDir
	}
	if o.Notify != "" {
		cfg.Notify = o.Notify
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ConfigureLogger installs the default logger at the configured level. Logs go
// to stderr so stdout only carries command output.
func ConfigureLogger(cfg *config.Config) {
	logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel), os.Stderr))
}

// LoadRules loads the curation rules, falling back to the built-in tables.
func LoadRules(cfg *config.Config) (*curation.Rules, error) {
	return curation.Load(cfg.RulesPath)
}

// OpenStore opens the SQLite store and closes it when the app stops.
func OpenStore(lc fx.Lifecycle, cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(context.Background(), cfg.DBPath)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := store.Close(); err != nil {
				logger.Warn("error closing store", logger.Fields{"path": store.Path(), "error": err.Error()})
				return err
			}
			return nil
		},
	})
	return store, nil
}

func NewNavigator(cfg *config.Config) *navigator.HTTP {
	return navigator.NewHTTP(navigator.Options{
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
	})
}

func NewCrawler(nav *navigator.HTTP, cfg *config.Config) *crawler.Engine {
	return crawler.New(nav, crawler.Options{
		SettleDelay: cfg.SettleDelay,
		MaxPages:    cfg.MaxPages,
	})
}

func NewParser(cfg *config.Config) *scraper.Parser {
	return scraper.NewParser(cfg.Format)
}

func NewCatalog(cfg *config.Config) *catalog.Client {
	return catalog.New(catalog.Options{
		BaseURL:    cfg.CatalogURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		Delay:      catalogDelay,
	})
}

func NewWriter(cfg *config.Config) *export.Writer {
	return export.NewWriter(cfg.ExportDir)
}

// NewUploader returns an S3 uploader, or nil when no bucket is configured.
func NewUploader(cfg *config.Config) (pipeline.Uploader, error) {
	if !cfg.S3.Enabled() {
		return nil, nil
	}
	u, err := export.NewS3Uploader(context.Background(), cfg.S3)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// NewNotifier returns the configured notifier, or nil when notifications are off.
func NewNotifier(cfg *config.Config) (notifier.Notifier, error) {
	return notifier.New(cfg.Notify, cfg.Twitter)
}

// PipelineParams are the collaborators NewPipeline receives from the graph.
type PipelineParams struct {
	fx.In

	Config    *config.Config
	Overrides Overrides
	Store     *storage.Store
	Crawler   *crawler.Engine
	Navigator *navigator.HTTP
	Parser    *scraper.Parser
	Catalog   *catalog.Client
	Rules     *curation.Rules
	Assembler *assemble.Assembler
	Writer    *export.Writer
	Uploader  pipeline.Uploader
	Notifier  notifier.Notifier
}

func NewPipeline(p PipelineParams) *pipeline.Pipeline {
	return pipeline.New(pipeline.Deps{
		Store:     p.Store,
		Crawler:   p.Crawler,
		Fetcher:   p.Navigator,
		Parser:    p.Parser,
		Catalog:   p.Catalog,
		Rules:     p.Rules,
		Assembler: p.Assembler,
		Writer:    p.Writer,
		Uploader:  p.Uploader,
		Notifier:  p.Notifier,
	}, pipeline.Options{
		BaseURL:     p.Config.BaseURL,
		EventRoot:   p.Config.EventRoot(),
		CardSets:    p.Config.CardSets,
		SettleDelay: p.Config.SettleDelay,
		DryRun:      p.Overrides.DryRun,
	})
}

// Run builds the graph for o, calls fn with the pipeline and stops the graph
// afterwards. The error of fn takes precedence over a stop error.
func Run(ctx context.Context, o Overrides, fn func(ctx context.Context, p *pipeline.Pipeline) error) (err error) {
	var p *pipeline.Pipeline
	a := fx.New(
		fx.Supply(o),
		Module,
		fx.Populate(&p),
		fx.NopLogger,
	)
	if err := a.Err(); err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if stopErr := a.Stop(stopCtx); stopErr != nil && err == nil {
			err = fmt.Errorf("stopping: %w", stopErr)
		}
	}()

	return fn(ctx, p)
}
