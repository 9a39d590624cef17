package transcribe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ResultFetcher retrieves a completed job's result document.
type ResultFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// HTTPFetcher fetches result documents over HTTP with exponential backoff.
// Result URIs returned by the transcription service are pre-signed, so no
// extra credentials are attached.
type HTTPFetcher struct {
	client  *http.Client
	maxWait time.Duration
}

// NewHTTPFetcher creates a fetcher with sane timeouts.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		maxWait: 2 * time.Minute,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("fetch result: unexpected status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = f.maxWait
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}
