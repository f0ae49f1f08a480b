package navigator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/fasthttp"
	"golang.org/x/net/html/charset"

	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
)

// ActionPageSubmit is the site's pagination action; its argument is the page number.
const ActionPageSubmit = "PageSubmit"

// PageNavigator loads pages and queries the current one.
type PageNavigator interface {
	Open(ctx context.Context, url string) error
	Title() string
	URL() string
	PageSource() string
	Element(kind SelectorKind, selector string) (Element, bool, error)
	Elements(kind SelectorKind, selector string) ([]Element, error)
	RunAction(ctx context.Context, name string, arg string) error
}

// ErrNoPage is returned when the navigator is queried before anything was opened.
var ErrNoPage = errors.New("no page loaded")

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Status, e.URL)
}

// Options configures an HTTP navigator
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// InitialBackoff is the first retry interval; zero uses the backoff default.
	InitialBackoff time.Duration
}

// HTTP is a PageNavigator backed by plain HTTP requests
type HTTP struct {
	client *fasthttp.Client
	opts   Options
	page   *Document
}

// NewHTTP creates an HTTP navigator.
func NewHTTP(opts Options) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &HTTP{
		client: &fasthttp.Client{
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: time.Minute,
			MaxConnsPerHost:     4,
		},
		opts: opts,
	}
}

// Open loads url with a GET request and makes it the current page.
func (h *HTTP) Open(ctx context.Context, url string) error {
	doc, err := h.Fetch(ctx, url)
	if err != nil {
		return err
	}
	h.page = doc
	return nil
}

// Fetch loads url without changing the current page.
func (h *HTTP) Fetch(ctx context.Context, url string) (*Document, error) {
	return h.load(ctx, fasthttp.MethodGet, url, nil)
}

// RunAction performs one of the site's page actions on the current page.
func (h *HTTP) RunAction(ctx context.Context, name string, arg string) error {
	if h.page == nil {
		return ErrNoPage
	}
	switch name {
	case ActionPageSubmit:
		if _, err := strconv.Atoi(arg); err != nil {
			return fmt.Errorf("%s expects a page number, got %q", name, arg)
		}
		form := fasthttp.AcquireArgs()
		defer fasthttp.ReleaseArgs(form)
		form.Set("cp", arg)

		doc, err := h.load(ctx, fasthttp.MethodPost, h.page.URL(), form)
		if err != nil {
			return fmt.Errorf("running %s(%s): %w", name, arg, err)
		}
		h.page = doc
		return nil
	default:
		return fmt.Errorf("unsupported page action %q", name)
	}
}

// Title returns the current page title.
func (h *HTTP) Title() string {
	if h.page == nil {
		return ""
	}
	return h.page.Title()
}

// URL returns the current page address.
func (h *HTTP) URL() string {
	if h.page == nil {
		return ""
	}
	return h.page.URL()
}

// PageSource returns the current page HTML.
func (h *HTTP) PageSource() string {
	if h.page == nil {
		return ""
	}
	return h.page.PageSource()
}

// Element queries the current page.
func (h *HTTP) Element(kind SelectorKind, selector string) (Element, bool, error) {
	if h.page == nil {
		return Element{}, false, ErrNoPage
	}
	return h.page.Element(kind, selector)
}

// Elements queries the current page.
func (h *HTTP) Elements(kind SelectorKind, selector string) ([]Element, error) {
	if h.page == nil {
		return nil, ErrNoPage
	}
	return h.page.Elements(kind, selector)
}

// Page returns the current document, or nil.
func (h *HTTP) Page() *Document {
	return h.page
}

func (h *HTTP) load(ctx context.Context, method, url string, form *fasthttp.Args) (*Document, error) {
	var doc *Document
	attempt := 0

	op := func() error {
		attempt++
		start := time.Now()
		body, contentType, err := h.do(ctx, method, url, form)
		logger.RecordTiming("http.request", time.Since(start))
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 && se.Status != fasthttp.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			logger.Warn("request failed", logger.Fields{
				"url":     url,
				"method":  method,
				"attempt": attempt,
				"error":   err.Error(),
			})
			return err
		}

		utf8Body, err := toUTF8(body, contentType)
		if err != nil {
			return backoff.Permanent(err)
		}
		d, err := NewDocument(url, utf8Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		doc = d
		return nil
	}

	b := backoff.NewExponentialBackOff()
	if h.opts.InitialBackoff > 0 {
		b.InitialInterval = h.opts.InitialBackoff
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(h.opts.MaxRetries, 0))), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		logger.IncrCounter("http.failures")
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	logger.IncrCounter("http.pages")
	return doc, nil
}

func (h *HTTP) do(ctx context.Context, method, url string, form *fasthttp.Args) ([]byte, string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if h.opts.UserAgent != "" {
		req.Header.SetUserAgent(h.opts.UserAgent)
	}
	if form != nil {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBody(form.QueryString())
	}

	deadline := time.Now().Add(h.opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return nil, "", backoff.Permanent(err)
	}
	if err := h.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, "", err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, "", &StatusError{URL: url, Status: resp.StatusCode()}
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, "", fmt.Errorf("decoding response body: %w", err)
	}
	// body is owned by resp and must be copied before release
	out := make([]byte, len(body))
	copy(out, body)
	return out, string(resp.Header.ContentType()), nil
}

func toUTF8(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	return io.ReadAll(r)
}
