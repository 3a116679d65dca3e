package comic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pders01/panels/internal/config"
	"github.com/pders01/panels/internal/validation"
)

const (
	infoPath      = "info.0.json"
	maxImageBytes = 16 << 20
)

// Fetcher resolves single comics. Implementations must be safe for
// concurrent use; the search path calls FetchByNumber from many goroutines.
type Fetcher interface {
	FetchLatest(ctx context.Context) (Comic, error)
	FetchByNumber(ctx context.Context, num int) (Comic, error)
}

type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	urls      *validation.SourceURLValidator
}

var _ Fetcher = (*Client)(nil)

func NewClient(cfg *config.Config) (*Client, error) {
	urls := validation.NewSourceURLValidator(cfg.Source.AllowLocal)
	base, err := urls.NormalizeBaseURL(cfg.Source.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source base URL: %w", err)
	}
	return &Client{
		baseURL:   base,
		userAgent: cfg.Source.UserAgent,
		client: &http.Client{
			Timeout:   cfg.Source.HTTPTimeout,
			Transport: newRetryTransport(cfg.Source.RetryMax),
		},
		urls: urls,
	}, nil
}

// BaseURL reports the site root the client fetches from.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) FetchLatest(ctx context.Context) (Comic, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/%s", c.baseURL, infoPath), 0)
}

func (c *Client) FetchByNumber(ctx context.Context, num int) (Comic, error) {
	if num < 1 {
		return Comic{}, newFetchError(KindInvalidTarget, num, fmt.Errorf("comic number must be positive"))
	}
	return c.fetch(ctx, fmt.Sprintf("%s/%d/%s", c.baseURL, num, infoPath), num)
}

func (c *Client) fetch(ctx context.Context, url string, num int) (Comic, error) {
	resp, err := c.get(ctx, url, "application/json", num)
	if err != nil {
		return Comic{}, err
	}
	defer resp.Body.Close()

	var comic Comic
	if err := json.NewDecoder(resp.Body).Decode(&comic); err != nil {
		return Comic{}, newFetchError(KindDecode, num, err)
	}
	if comic.Num < 1 {
		return Comic{}, newFetchError(KindDecode, num, fmt.Errorf("missing comic number"))
	}
	return comic, nil
}

// FetchImage downloads the image at url, typically Comic.Img.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if err := c.urls.ValidateImageURL(url); err != nil {
		return nil, newFetchError(KindInvalidTarget, 0, err)
	}
	resp, err := c.get(ctx, url, "image/*", 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, newFetchError(KindTransport, 0, fmt.Errorf("reading image: %w", err))
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, url, accept string, num int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newFetchError(KindInvalidTarget, num, fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newFetchError(KindTransport, num, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, newFetchError(KindInvalidTarget, num, &StatusError{URL: url, StatusCode: resp.StatusCode})
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, newFetchError(KindTransport, num, &StatusError{URL: url, StatusCode: resp.StatusCode})
	}

	return resp, nil
}

// StatusError carries a non-2xx response status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}

// IsStatus reports whether err wraps a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
