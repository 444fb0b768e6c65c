package contentcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher retrieves the raw bytes for a resource locator. The context is
// cancelled when every caller waiting on the download has detached;
// implementations should abort promptly, but one that runs to completion
// anyway simply has its result discarded.
type Fetcher func(ctx context.Context, locator string) ([]byte, error)

// NewHTTPFetcher returns a Fetcher that issues a GET for the locator URL.
// If client is nil, http.DefaultClient is used.
func NewHTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, locator string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: %s", locator, resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
}
