package runtime

import (
	"context"
	"io"
	"net/http"
	"time"
)

// HTTPHealthChecker answers the single predicate the supervisor needs: is the
// gateway accepting connections and reporting ready.
type HTTPHealthChecker struct {
	URL    string
	Client *http.Client
}

func NewHTTPHealthChecker(url string) *HTTPHealthChecker {
	return &HTTPHealthChecker{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (h *HTTPHealthChecker) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return false
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode/100 == 2
}
