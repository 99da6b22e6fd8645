package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
)

// ── HTTP source ─────────────────────────────────────────────
// Downloads a dataset's zip archive from the ILSOS publishing site.

// RetryPolicy bounds the retry wrapper around one archive download.
// Only transient failures (timeouts, connection errors, 5xx) are
// retried; 4xx responses and malformed archives are permanent.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	MinWait     time.Duration // initial backoff interval
	MaxWait     time.Duration // backoff interval cap
}

// DefaultRetryPolicy matches the publishing site's observed flakiness:
// three attempts with exponential waits between 4 and 10 seconds.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	MinWait:     4 * time.Second,
	MaxWait:     10 * time.Second,
}

type httpSource struct {
	client *http.Client
	retry  RetryPolicy
}

func init() {
	etl.RegisterSource(&httpSource{
		client: &http.Client{Timeout: 180 * time.Second},
		retry:  DefaultRetryPolicy,
	})
}

// SetHTTPOptions reconfigures the registered HTTP source.
// Called by the app at startup, before any fetch runs.
func SetHTTPOptions(timeout time.Duration, policy RetryPolicy) {
	s, err := etl.GetSource("http")
	if err != nil {
		return
	}
	hs := s.(*httpSource)
	hs.client = &http.Client{Timeout: timeout}
	hs.retry = policy
}

func (s *httpSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{Type: "http", Label: "ILSOS bulk-data site"}
}

func (s *httpSource) Fetch(ctx context.Context, ds etl.Dataset) (string, error) {
	raw, err := s.fetchArchive(ctx, ds.URL)
	if err != nil {
		return "", err
	}
	return extractArchiveText(raw)
}

// fetchArchive downloads the archive bytes, retrying per the policy.
func (s *httpSource) fetchArchive(ctx context.Context, url string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retry.MinWait
	bo.MaxInterval = s.retry.MaxWait
	bo.Multiplier = 2
	// Keep waits inside the configured [MinWait, MaxWait] bounds.
	bo.RandomizationFactor = 0

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			// Timeouts and connection failures land here; retryable.
			return fmt.Errorf("get %s: %w", url, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("get %s: http %d", url, resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("get %s: http %d", url, resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s: %w", url, err)
		}
		return nil
	}

	attempts := s.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	wrapped := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)
	if err := backoff.Retry(op, wrapped); err != nil {
		return nil, err
	}
	return body, nil
}
