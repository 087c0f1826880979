package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/nao1215/frenscrape/internal/log"
)

// Client fetches page text and asset bytes.
type Client struct {
	// client performs the requests. Defaults to a zero http.Client.
	client *http.Client

	// logger receives debug and trace output about each request.
	logger *slog.Logger

	// limiter spaces out requests. Nil means no limit.
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
// Tests use this to talk to httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit allows at most perSecond requests per second.
// Zero or a negative value leaves requests unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a Client with library-default transport settings.
func NewClient(opts ...Option) *Client {
	c := &Client{
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Text fetches u and returns its body decoded to a UTF-8 string.
func (c *Client) Text(ctx context.Context, u *url.URL) (string, error) {
	body, contentType, err := c.get(ctx, u)
	if err != nil {
		return "", err
	}

	text, err := decodeText(body, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: decoding %s: %v", ErrHTTPClient, u, err)
	}
	return text, nil
}

// Bytes fetches u and returns its raw body.
func (c *Client) Bytes(ctx context.Context, u *url.URL) ([]byte, error) {
	body, _, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// get performs a GET request and reads the whole body.
func (c *Client) get(ctx context.Context, u *url.URL) ([]byte, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("%w: waiting to fetch %s: %w", ErrHTTPClient, u, err)
		}
	}

	c.logger.Debug("fetching", "url", u.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: building request for %s: %v", ErrHTTPClient, u, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrHTTPClient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: GET %s: %s", ErrHTTPClient, u, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading body of %s: %w", ErrHTTPClient, u, err)
	}

	c.logger.Log(ctx, log.LevelTrace, "fetched",
		"url", u.String(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"contentType", resp.Header.Get("Content-Type"),
	)

	return body, resp.Header.Get("Content-Type"), nil
}

// decodeText converts body to UTF-8 using the charset parameter of
// contentType. Missing, unparsable or UTF-8 charsets leave the body as is.
func decodeText(body []byte, contentType string) (string, error) {
	label := charsetLabel(contentType)
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return string(body), nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		// Unknown labels are treated as UTF-8.
		return string(body), nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// charsetLabel extracts the charset parameter from a Content-Type value.
func charsetLabel(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}
