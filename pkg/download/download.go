// Package download fetches subscription content over HTTP.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/dustin/go-humanize"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "hostsub"

	// MaxBodySize caps a downloaded hosts list. Public block lists run to a
	// few MB; anything past this is not a hosts file.
	MaxBodySize = 64 << 20
)

// Downloader is the two-call contract the commands rely on.
type Downloader interface {
	// Download returns the body of url
	Download(url string) (string, error)

	// Probe reports whether url answers at all
	Probe(url string) bool
}

// Options configures an HTTP downloader.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// HTTP is a Downloader over net/http. Every request gets its own timeout
// and is never retried.
type HTTP struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// New returns an HTTP downloader.
func New(opts Options) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTP{client: client, timeout: opts.Timeout, userAgent: opts.UserAgent}
}

// Download performs a GET and returns the body. Non-2xx answers are errors.
func (h *HTTP) Download(url string) (string, error) {
	logger := logging.GetLogger("download")
	done := logging.LogOperationStart(logger, "download")
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	resp, err := h.do(ctx, http.MethodGet, url)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "failed to download %s", url).
			WithDetail("url", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Newf(errors.ErrDownload, "failed to download %s: unexpected status %s", url, resp.Status).
			WithDetail("url", url).
			WithDetail("status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "failed to read response from %s", url).
			WithDetail("url", url)
	}
	if len(body) > MaxBodySize {
		return "", errors.Newf(errors.ErrDownload, "response from %s is larger than %s", url, humanize.IBytes(MaxBodySize)).
			WithDetail("url", url)
	}

	logger.Info().
		Str("url", url).
		Str("size", humanize.Bytes(uint64(len(body)))).
		Msg("Downloaded subscription")
	return string(body), nil
}

// Probe sends a HEAD request. Any answer below 400 counts as reachable.
func (h *HTTP) Probe(url string) bool {
	logger := logging.GetLogger("download")

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	resp, err := h.do(ctx, http.MethodHead, url)
	if err != nil {
		logger.Debug().Err(err).Str("url", url).Msg("Probe failed")
		return false
	}
	_ = resp.Body.Close()

	logger.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("Probe answered")
	return resp.StatusCode < 400
}

func (h *HTTP) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	return h.client.Do(req)
}
