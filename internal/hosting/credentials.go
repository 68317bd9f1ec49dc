package hosting

import (
	"os"
	"sync"
)

// CredentialStore resolves provider tokens from explicit sets and from the
// environment. Explicit sets win. Mutating a credential fires the registered
// change hooks, which the wiring layer uses to reset provider notification
// flags: a changed credential deserves a fresh notification if it is also
// bad.
type CredentialStore struct {
	mu       sync.Mutex
	envVars  map[string][]string
	tokens   map[string]string
	onChange []func(providerID string)
}

// NewCredentialStore creates a store with the conventional environment
// variable names for the built-in providers.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		envVars: map[string][]string{
			gitlabProviderID: {"REVLENS_GITLAB_TOKEN", "GITLAB_TOKEN"},
			githubProviderID: {"REVLENS_GITHUB_TOKEN", "GITHUB_TOKEN"},
		},
		tokens: make(map[string]string),
	}
}

// SetEnvVar prepends a configured environment variable name for a provider.
func (s *CredentialStore) SetEnvVar(providerID, envVar string) {
	if envVar == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envVars[providerID] = append([]string{envVar}, s.envVars[providerID]...)
}

// Token implements CredentialSource.
func (s *CredentialStore) Token(providerID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok := s.tokens[providerID]; tok != "" {
		return tok
	}
	for _, name := range s.envVars[providerID] {
		if tok := os.Getenv(name); tok != "" {
			return tok
		}
	}
	return ""
}

// Set stores an explicit token for a provider and fires the change hooks.
// An empty token clears the explicit entry (the environment may still apply).
func (s *CredentialStore) Set(providerID, token string) {
	s.mu.Lock()
	if token == "" {
		delete(s.tokens, providerID)
	} else {
		s.tokens[providerID] = token
	}
	hooks := make([]func(string), len(s.onChange))
	copy(hooks, s.onChange)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(providerID)
	}
}

// OnChange registers a hook invoked after every credential mutation.
func (s *CredentialStore) OnChange(fn func(providerID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}
