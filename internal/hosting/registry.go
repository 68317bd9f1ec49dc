package hosting

import "sync"

// Registry holds registered providers and detects which one applies to a
// remote URL. Providers are tested in registration order and the first
// IsProviderURL match wins; order matters when enterprise hostnames could
// plausibly match more than one provider.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a provider. Registration order is detection order.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// Providers returns the registered providers in registration order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Detect returns the first provider claiming the remote URL, along with the
// parsed remote identity. ok is false when no provider matches or the
// matching provider cannot parse the URL.
func (r *Registry) Detect(remoteURL string) (Provider, RemoteIdentity, bool) {
	for _, p := range r.Providers() {
		if !p.IsProviderURL(remoteURL) {
			continue
		}
		identity, ok := p.ParseRemoteURL(remoteURL)
		if !ok {
			return nil, RemoteIdentity{}, false
		}
		return p, identity, true
	}
	return nil, RemoteIdentity{}, false
}

// ResetNotificationState resets the notification flag of the named provider,
// or of every provider when providerID is empty.
func (r *Registry) ResetNotificationState(providerID string) {
	for _, p := range r.Providers() {
		if providerID == "" || p.Identity().ID == providerID {
			p.ResetNotificationState()
		}
	}
}
