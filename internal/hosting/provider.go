// Package hosting resolves commits to the change request (merge request or
// pull request) that landed them on a hosting provider. Each provider variant
// implements the Provider contract; the Registry picks the variant that
// matches a repository's remote URL.
package hosting

import (
	"context"
	"time"
)

// State is the lifecycle state of a change request.
type State string

const (
	StateMerged State = "merged"
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// ChangeRequest is the canonical resolved result, host-agnostic across
// GitLab merge requests and GitHub pull requests.
type ChangeRequest struct {
	Number   int                 `json:"number"`
	Title    string              `json:"title"`
	URL      string              `json:"url"`
	State    State               `json:"state"`
	MergedAt *time.Time          `json:"mergedAt,omitempty"`
	Stats    *ChangeRequestStats `json:"stats,omitempty"`
}

// ChangeRequestStats carries optional size information when the provider
// response includes it.
type ChangeRequestStats struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changedFiles"`
}

// RemoteIdentity is the (host, project path) pair derived from a remote URL.
type RemoteIdentity struct {
	Host        string `json:"host"`
	ProjectPath string `json:"projectPath"`
}

// Identity identifies a provider instance.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Provider is one hosting-provider variant. Implementations own their
// notification state: ShouldNotify on a returned *ProviderError is true at
// most once per provider until ResetNotificationState is called.
type Provider interface {
	Identity() Identity
	HasCredential() bool

	// ParseRemoteURL extracts the remote identity from a raw remote URL.
	// ok is false when the URL cannot be parsed or the project path is empty.
	ParseRemoteURL(raw string) (RemoteIdentity, bool)

	// IsProviderURL reports whether the remote URL plausibly belongs to this
	// provider, including self-hosted/enterprise deployments.
	IsProviderURL(raw string) bool

	// ResolveChangeRequest resolves a commit to its change request. A nil
	// result with a nil error means the provider answered and no change
	// request exists; that outcome is valid and cacheable. Failures are
	// returned as *ProviderError.
	ResolveChangeRequest(ctx context.Context, remote RemoteIdentity, commitID string) (*ChangeRequest, error)

	ResetNotificationState()
}

// CredentialSource supplies API tokens per provider id. Presence of a token
// is what HasCredential reports; token storage is owned elsewhere.
type CredentialSource interface {
	Token(providerID string) string
}

// Notifier receives provider failures that warrant user-visible notification
// handling. The engine forwards every typed failure; gating on ShouldNotify
// is the sink's decision.
type Notifier interface {
	Notify(err *ProviderError, identity Identity)
}
