package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// Set is a set of unsubscribed addresses. Matching is exact.
type Set map[string]struct{}

// NewSet builds a Set from a list of addresses.
func NewSet(emails ...string) Set {
	s := make(Set, len(emails))
	for _, e := range emails {
		s[e] = struct{}{}
	}
	return s
}

// Contains reports whether email is in the set.
func (s Set) Contains(email string) bool {
	_, ok := s[email]
	return ok
}

// Emails returns the addresses in the set in no particular order.
func (s Set) Emails() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	return out
}

type listResponse struct {
	Emails []string `json:"emails"`
}

// Client fetches the unsubscribe list.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	group  singleflight.Group
	url    string
}

// New creates a client for the configured endpoint.
func New(cfg Config, opts ...Option) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		url:    cfg.URL,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUnsubscribed performs one GET against the endpoint and returns the unsubscribed set.
// Concurrent callers share one request. The shared request is bounded by the client
// timeout only, so a caller that gives up does not fail the others.
func (c *Client) FetchUnsubscribed(ctx context.Context) (Set, error) {
	ch := c.group.DoChan(c.url, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx))
	})

	var err error
	select {
	case <-ctx.Done():
		err = &TransportError{Op: "request", Err: ctx.Err()}
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(Set), nil
		}
		err = res.Err
	}

	c.logger.ErrorContext(ctx, "failed to fetch unsubscribe list",
		slog.String("url", c.url),
		slog.Any("error", err),
	)
	return nil, err
}

// Healthcheck returns a readiness check that succeeds when the endpoint answers.
func (c *Client) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := c.FetchUnsubscribed(ctx)
		return err
	}
}

func (c *Client) fetch(ctx context.Context) (Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &TransportError{Op: "request", StatusCode: resp.StatusCode}
	}

	var body listResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, &TransportError{Op: "decode response", Err: err}
	}
	if body.Emails == nil {
		return nil, &TransportError{Op: "decode response", Err: errors.New(`missing "emails" field`)}
	}

	return NewSet(body.Emails...), nil
}
