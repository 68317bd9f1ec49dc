package hosting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const gitlabProviderID = "gitlab"

// GitLabClient resolves commits to merge requests through the GitLab REST
// API. A single commits/{sha}/merge_requests call returns every candidate;
// the shared selection rule picks the winner.
type GitLabClient struct {
	baseURL string
	creds   CredentialSource
	hc      *http.Client
	notify  notificationState
}

// NewGitLabClient creates a GitLab provider client.
func NewGitLabClient(opts ClientOptions) *GitLabClient {
	hc := opts.HTTPClient
	if hc == nil {
		hc = defaultHTTPClient()
	}
	return &GitLabClient{
		baseURL: opts.BaseURL,
		creds:   opts.Credentials,
		hc:      hc,
	}
}

// Identity implements Provider.
func (c *GitLabClient) Identity() Identity {
	return Identity{ID: gitlabProviderID, DisplayName: "GitLab"}
}

// HasCredential implements Provider.
func (c *GitLabClient) HasCredential() bool {
	return c.creds != nil && c.creds.Token(gitlabProviderID) != ""
}

// ParseRemoteURL implements Provider.
func (c *GitLabClient) ParseRemoteURL(raw string) (RemoteIdentity, bool) {
	host, path, ok := SplitRemoteURL(raw)
	if !ok {
		return RemoteIdentity{}, false
	}
	return RemoteIdentity{Host: host, ProjectPath: path}, true
}

// IsProviderURL implements Provider.
func (c *GitLabClient) IsProviderURL(raw string) bool {
	host, _, ok := SplitRemoteURL(raw)
	if !ok {
		return false
	}
	return hostMatches(host, "gitlab", c.baseURL)
}

// ResetNotificationState implements Provider.
func (c *GitLabClient) ResetNotificationState() {
	c.notify.reset()
}

// apiBase returns the API root for a remote host, honoring the configured
// override.
func (c *GitLabClient) apiBase(host string) string {
	if c.baseURL != "" {
		return trimSlash(c.baseURL)
	}
	return "https://" + host
}

type gitlabMergeRequest struct {
	IID      int        `json:"iid"`
	Title    string     `json:"title"`
	WebURL   string     `json:"web_url"`
	State    string     `json:"state"`
	MergedAt *time.Time `json:"merged_at"`
}

func (mr gitlabMergeRequest) toChangeRequest() ChangeRequest {
	state := StateClosed
	switch mr.State {
	case "merged":
		state = StateMerged
	case "opened":
		state = StateOpen
	}
	return ChangeRequest{
		Number:   mr.IID,
		Title:    mr.Title,
		URL:      mr.WebURL,
		State:    state,
		MergedAt: mr.MergedAt,
	}
}

// ResolveChangeRequest implements Provider.
func (c *GitLabClient) ResolveChangeRequest(ctx context.Context, remote RemoteIdentity, commitID string) (*ChangeRequest, error) {
	token := c.creds.Token(gitlabProviderID)
	if token == "" {
		return nil, noCredentialError(c.Identity())
	}

	// The project path is percent-encoded as one segment, slashes included;
	// GitLab requires group%2Fproject addressing.
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/repository/commits/%s/merge_requests",
		c.apiBase(remote.Host), url.PathEscape(remote.ProjectPath), url.PathEscape(commitID))

	header := http.Header{}
	header.Set("PRIVATE-TOKEN", token)
	header.Set("Accept", "application/json")

	var raw []gitlabMergeRequest
	if err := fetchJSON(ctx, c.hc, endpoint, header, &raw); err != nil {
		return nil, c.decorate(err)
	}

	candidates := make([]ChangeRequest, 0, len(raw))
	for _, mr := range raw {
		candidates = append(candidates, mr.toChangeRequest())
	}
	return SelectChangeRequest(candidates), nil
}

// decorate stamps the once-per-configuration notification flag onto
// credential failures.
func (c *GitLabClient) decorate(err error) error {
	if pe, ok := AsProviderError(err); ok && pe.Kind == FailureInvalidCredential {
		pe.ShouldNotify = c.notify.consume()
	}
	return err
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
