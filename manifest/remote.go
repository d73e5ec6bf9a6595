package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/dnscache"

	"github.com/git-pkgs/resolve"
)

var (
	// ErrNotFound is returned when the manifest document does not exist.
	ErrNotFound = errors.New("manifest not found")

	// ErrRateLimited is returned when the manifest host rate limits requests.
	ErrRateLimited = errors.New("rate limited by manifest host")

	// ErrUnavailable is returned when the manifest host is unreachable or
	// failing.
	ErrUnavailable = errors.New("manifest host unavailable")
)

// Source fetches a central version manifest from a location.
type Source interface {
	Fetch(ctx context.Context, url string) (*resolve.CentralVersionMap, error)
}

// HTTPSource fetches manifest documents over HTTP with retries.
// Close releases its background DNS refresh when the source is no longer
// needed.
type HTTPSource struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSource) {
		s.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *HTTPSource) {
		s.userAgent = ua
	}
}

// WithMaxRetries sets the maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(s *HTTPSource) {
		s.maxRetries = n
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(s *HTTPSource) {
		s.baseDelay = d
	}
}

// NewHTTPSource creates an HTTPSource with the given options.
func NewHTTPSource(opts ...Option) *HTTPSource {
	// DNS cache with 5 minute refresh interval
	resolver := &dnscache.Resolver{}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	s := &HTTPSource{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP")
				},
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent:  "git-pkgs-resolve/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				resolver.Refresh(true)
			case <-s.done:
				return
			}
		}
	}()

	return s
}

// Close stops the background DNS refresh. Calling Close more than once is
// safe; the source must not be used for further fetches afterwards.
func (s *HTTPSource) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Fetch downloads and parses the manifest at url.
func (s *HTTPSource) Fetch(ctx context.Context, url string) (*resolve.CentralVersionMap, error) {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with 10% jitter to prevent thundering herd
			delay := s.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			jitter := time.Duration(float64(delay) * (rand.Float64() * 0.1))
			delay += jitter

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		central, err := s.doFetch(ctx, url)
		if err == nil {
			return central, nil
		}

		lastErr = err

		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformedManifest) {
			return nil, err
		}

		// Retry on rate limit and server errors
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
			continue
		}

		return nil, err
	}

	return nil, lastErr
}

func (s *HTTPSource) doFetch(ctx context.Context, url string) (*resolve.CentralVersionMap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/toml, text/plain, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		return Parse(resp.Body)

	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited

	case resp.StatusCode >= 500:
		return nil, ErrUnavailable

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
