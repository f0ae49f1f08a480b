package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/fasthttp"

	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
	"github.com/pfrederiksen/mtgtop8-sync/internal/storage"
)

// DefaultBaseURL is the public Scryfall API.
const DefaultBaseURL = "https://api.scryfall.com"

// APIError is returned for unexpected status codes.
type APIError struct {
	URL    string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("card catalog error: %d for %s", e.Status, e.URL)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// Delay is the pause between page requests. Scryfall asks for 50-100ms.
	Delay          time.Duration
	InitialBackoff time.Duration
}

// Client queries the card catalog.
type Client struct {
	client *fasthttp.Client
	opts   Options
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		opts: opts,
	}
}

// SearchURL returns the first search page for every English printing of a set.
func (c *Client) SearchURL(setCode string) string {
	q := url.Values{}
	q.Set("order", "set")
	q.Set("unique", "prints")
	q.Set("q", fmt.Sprintf("set:'%s' lang:'en'", setCode))
	return c.opts.BaseURL + "/cards/search?" + q.Encode()
}

// FetchSet returns every card printed in setCode, following pagination. A set
// the catalog does not know yields no cards.
func (c *Client) FetchSet(ctx context.Context, setCode string) ([]storage.Card, error) {
	var cards []storage.Card
	next := c.SearchURL(setCode)
	for page := 1; next != ""; page++ {
		if page > 1 && c.opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.opts.Delay):
			}
		}

		resp, err := doRequest[searchResponse](ctx, c, next)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == fasthttp.StatusNotFound {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching set %s page %d: %w", setCode, page, err)
		}

		for _, ac := range resp.Data {
			cards = append(cards, ac.toCard())
		}
		next = ""
		if resp.HasMore {
			next = resp.NextPage
		}
	}

	logger.Debug("fetched card set", logger.Fields{"set": setCode, "cards": len(cards)})
	logger.AddCounter("catalog.cards", int64(len(cards)))
	return cards, nil
}

// FetchSets fetches each set in order and concatenates the results.
func (c *Client) FetchSets(ctx context.Context, setCodes []string) ([]storage.Card, error) {
	var all []storage.Card
	for _, code := range setCodes {
		cards, err := c.FetchSet(ctx, code)
		if err != nil {
			return nil, err
		}
		all = append(all, cards...)
	}
	return all, nil
}

func doRequest[T any](ctx context.Context, c *Client, url string) (*T, error) {
	var result *T
	op := func() error {
		body, err := c.get(ctx, url)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Status != fasthttp.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
		}
		result = &v
		return nil
	}

	b := backoff.NewExponentialBackOff()
	if c.opts.InitialBackoff > 0 {
		b.InitialInterval = c.opts.InitialBackoff
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(c.opts.MaxRetries, 0))), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, backoff.Permanent(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.SetUserAgent(c.opts.UserAgent)
	}

	deadline := time.Now().Add(c.opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	start := time.Now()
	err := c.client.DoDeadline(req, resp, deadline)
	logger.RecordTiming("catalog.request", time.Since(start))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &APIError{URL: url, Status: resp.StatusCode()}
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}
