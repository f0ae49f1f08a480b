package crawler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/navigator"
	"github.com/pfrederiksen/mtgtop8-sync/internal/scraper"
)

// Options tunes a crawl
type Options struct {
	// SettleDelay is waited after every navigation so the site is not hammered.
	SettleDelay time.Duration
	// MaxPages caps the number of pages fetched; zero means no cap.
	MaxPages int
}

// Engine synchronizes the event list of one format page
type Engine struct {
	nav   navigator.PageNavigator
	opts  Options
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Engine driving nav.
func New(nav navigator.PageNavigator, opts Options) *Engine {
	return &Engine{nav: nav, opts: opts, sleep: Sleep}
}

// Synchronize collects events from baseURL page by page until a page contains one
// of latestKnown or there is no further page. All collected events are returned,
// including the known ones on the last page; callers filter with event.Diff.
func (e *Engine) Synchronize(ctx context.Context, baseURL string, latestKnown event.LinkSet) ([]event.Event, error) {
	start := time.Now()
	defer func() { logger.RecordTiming("crawl.duration", time.Since(start)) }()

	if err := e.nav.Open(ctx, baseURL); err != nil {
		return nil, fmt.Errorf("opening %s: %w", baseURL, err)
	}
	if err := e.sleep(ctx, e.opts.SettleDelay); err != nil {
		return nil, err
	}

	page := 1
	collected, err := e.extract(page)
	if err != nil {
		return nil, err
	}

	for HasNextPage(e.nav.PageSource(), page) && !event.IsUpToDate(collected, latestKnown) {
		if e.opts.MaxPages > 0 && page >= e.opts.MaxPages {
			logger.Warn("page limit reached before known events", logger.Fields{
				"max_pages": e.opts.MaxPages,
				"events":    len(collected),
			})
			break
		}

		page++
		if err := e.nav.RunAction(ctx, navigator.ActionPageSubmit, strconv.Itoa(page)); err != nil {
			return nil, fmt.Errorf("advancing to page %d: %w", page, err)
		}
		if err := e.sleep(ctx, e.opts.SettleDelay); err != nil {
			return nil, err
		}

		events, err := e.extract(page)
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			logger.Warn("empty event page, stopping", logger.Fields{"page": page})
			break
		}
		collected = append(collected, events...)
	}

	logger.Info("event crawl finished", logger.Fields{
		"pages":      page,
		"events":     len(collected),
		"up_to_date": event.IsUpToDate(collected, latestKnown),
	})
	logger.SetGauge("crawl.pages", float64(page))
	return collected, nil
}

func (e *Engine) extract(page int) ([]event.Event, error) {
	events, err := scraper.ExtractEvents(e.nav)
	if err != nil {
		return nil, fmt.Errorf("extracting events from page %d: %w", page, err)
	}
	logger.Debug("event page extracted", logger.Fields{
		"page":   page,
		"events": len(events),
	})
	logger.IncrCounter("crawl.pages_fetched")
	return events, nil
}

// HasNextPage reports whether source offers a link to the page after current.
func HasNextPage(source string, current int) bool {
	return strings.Contains(source, fmt.Sprintf("%s(%d)", navigator.ActionPageSubmit, current+1))
}

// Sleep waits d or until ctx is done. A non-positive d only checks ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
