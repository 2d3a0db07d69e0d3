// scraper/downloader.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// openURL issues a GET and returns the body of a 200 response. The caller
// closes it. 401 and 403 are reported as ErrFeedPermission.
func openURL(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d: %w", url, resp.StatusCode, ErrFeedPermission)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download %s: received status code %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
