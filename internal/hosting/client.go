package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// defaultHTTPTimeout bounds a single provider request
	defaultHTTPTimeout = 10 * time.Second

	// maxBodySize caps provider response bodies
	maxBodySize = 4 << 20
)

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// fetchJSON performs a GET against a provider endpoint and decodes a 2xx JSON
// body into out. Non-2xx statuses come back as *ProviderError with the
// status-to-kind mapping; transport failures map to FailureNetwork.
func fetchJSON(ctx context.Context, hc *http.Client, rawURL string, header http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &ProviderError{Kind: FailureUnknown, Message: "invalid request URL", cause: err}
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return &ProviderError{
			Kind:       classifyStatus(resp.StatusCode),
			Message:    fmt.Sprintf("provider returned HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return &ProviderError{Kind: FailureUnknown, Message: "failed to decode provider response", cause: err}
	}
	return nil
}

// notificationState tracks the once-per-configuration notification flag a
// provider owns. The flag flips on the first credential failure and stays
// set until an explicit reset or a credential change.
type notificationState struct {
	mu       sync.Mutex
	notified bool
}

// consume returns true exactly once until reset is called.
func (n *notificationState) consume() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.notified {
		return false
	}
	n.notified = true
	return true
}

func (n *notificationState) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = false
}

// ClientOptions configures a provider client.
type ClientOptions struct {
	// BaseURL overrides the API host, for self-hosted deployments.
	BaseURL string
	// Credentials supplies the API token; required for resolution.
	Credentials CredentialSource
	// HTTPClient overrides the default client (tests inject httptest here).
	HTTPClient *http.Client
}
