package hosting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const githubProviderID = "github"

var (
	mergeCommitMessageRe = regexp.MustCompile(`Merge pull request #(\d+)`)
	squashRefMessageRe   = regexp.MustCompile(`\(#(\d+)\)`)
)

// GitHubClient resolves commits to pull requests through the GitHub REST
// API. The commits/{sha}/pulls endpoint only answers for merge commits, so
// resolution is two-phase: when the primary lookup comes back empty the
// client inspects the commit message for a PR reference and fetches that
// pull request by number. A commit with no associated PR is a valid null
// result, not an error.
type GitHubClient struct {
	baseURL string
	creds   CredentialSource
	hc      *http.Client
	notify  notificationState
}

// NewGitHubClient creates a GitHub provider client.
func NewGitHubClient(opts ClientOptions) *GitHubClient {
	hc := opts.HTTPClient
	if hc == nil {
		hc = defaultHTTPClient()
	}
	return &GitHubClient{
		baseURL: opts.BaseURL,
		creds:   opts.Credentials,
		hc:      hc,
	}
}

// Identity implements Provider.
func (c *GitHubClient) Identity() Identity {
	return Identity{ID: githubProviderID, DisplayName: "GitHub"}
}

// HasCredential implements Provider.
func (c *GitHubClient) HasCredential() bool {
	return c.creds != nil && c.creds.Token(githubProviderID) != ""
}

// ParseRemoteURL implements Provider.
func (c *GitHubClient) ParseRemoteURL(raw string) (RemoteIdentity, bool) {
	host, path, ok := SplitRemoteURL(raw)
	if !ok {
		return RemoteIdentity{}, false
	}
	return RemoteIdentity{Host: host, ProjectPath: path}, true
}

// IsProviderURL implements Provider.
func (c *GitHubClient) IsProviderURL(raw string) bool {
	host, _, ok := SplitRemoteURL(raw)
	if !ok {
		return false
	}
	return hostMatches(host, "github", c.baseURL)
}

// ResetNotificationState implements Provider.
func (c *GitHubClient) ResetNotificationState() {
	c.notify.reset()
}

// apiBase returns the API root for a remote host. github.com uses the
// dedicated API host; enterprise installs serve the API under /api/v3.
func (c *GitHubClient) apiBase(host string) string {
	if c.baseURL != "" {
		return trimSlash(c.baseURL)
	}
	if strings.EqualFold(host, "github.com") {
		return "https://api.github.com"
	}
	return "https://" + host + "/api/v3"
}

func (c *GitHubClient) header(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "token "+token)
	h.Set("Accept", "application/vnd.github+json")
	return h
}

type githubPull struct {
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	HTMLURL      string     `json:"html_url"`
	State        string     `json:"state"`
	MergedAt     *time.Time `json:"merged_at"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changed_files"`
}

func (p githubPull) toChangeRequest() ChangeRequest {
	// GitHub reports merged PRs as closed; merged_at is the discriminator.
	state := StateClosed
	switch {
	case p.MergedAt != nil:
		state = StateMerged
	case p.State == "open":
		state = StateOpen
	}

	cr := ChangeRequest{
		Number:   p.Number,
		Title:    p.Title,
		URL:      p.HTMLURL,
		State:    state,
		MergedAt: p.MergedAt,
	}
	if p.Additions != 0 || p.Deletions != 0 || p.ChangedFiles != 0 {
		cr.Stats = &ChangeRequestStats{
			Additions:    p.Additions,
			Deletions:    p.Deletions,
			ChangedFiles: p.ChangedFiles,
		}
	}
	return cr
}

type githubCommit struct {
	Commit struct {
		Message string `json:"message"`
	} `json:"commit"`
}

// ResolveChangeRequest implements Provider.
func (c *GitHubClient) ResolveChangeRequest(ctx context.Context, remote RemoteIdentity, commitID string) (*ChangeRequest, error) {
	token := c.creds.Token(githubProviderID)
	if token == "" {
		return nil, noCredentialError(c.Identity())
	}

	api := c.apiBase(remote.Host)
	repoPath := escapeSegments(remote.ProjectPath)
	header := c.header(token)

	// Phase 1: the direct association endpoint.
	var pulls []githubPull
	endpoint := fmt.Sprintf("%s/repos/%s/commits/%s/pulls", api, repoPath, url.PathEscape(commitID))
	if err := fetchJSON(ctx, c.hc, endpoint, header, &pulls); err != nil {
		return nil, c.decorate(err)
	}

	if len(pulls) > 0 {
		candidates := make([]ChangeRequest, 0, len(pulls))
		for _, p := range pulls {
			candidates = append(candidates, p.toChangeRequest())
		}
		return SelectChangeRequest(candidates), nil
	}

	// Phase 2: squash or rebase merges leave the PR number only in the
	// commit message.
	var commit githubCommit
	endpoint = fmt.Sprintf("%s/repos/%s/commits/%s", api, repoPath, url.PathEscape(commitID))
	if err := fetchJSON(ctx, c.hc, endpoint, header, &commit); err != nil {
		return nil, c.decorate(err)
	}

	number, ok := pullNumberFromMessage(commit.Commit.Message)
	if !ok {
		return nil, nil
	}

	var pull githubPull
	endpoint = fmt.Sprintf("%s/repos/%s/pulls/%d", api, repoPath, number)
	if err := fetchJSON(ctx, c.hc, endpoint, header, &pull); err != nil {
		// The message reference may point at a deleted or foreign PR;
		// absence is a valid, cacheable answer.
		return nil, nil
	}

	cr := pull.toChangeRequest()
	return &cr, nil
}

// pullNumberFromMessage extracts a PR number from a commit message, checking
// the merge-commit form before the squash "(#N)" suffix form.
func pullNumberFromMessage(message string) (int, bool) {
	for _, re := range []*regexp.Regexp{mergeCommitMessageRe, squashRefMessageRe} {
		if m := re.FindStringSubmatch(message); m != nil {
			var n int
			if _, err := fmt.Sscanf(m[1], "%d", &n); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

func (c *GitHubClient) decorate(err error) error {
	if pe, ok := AsProviderError(err); ok && pe.Kind == FailureInvalidCredential {
		pe.ShouldNotify = c.notify.consume()
	}
	return err
}

// escapeSegments percent-encodes each path segment while keeping the
// owner/repo separators intact.
func escapeSegments(p string) string {
	segs := strings.Split(p, "/")
	for i := range segs {
		segs[i] = url.PathEscape(segs[i])
	}
	return strings.Join(segs, "/")
}
