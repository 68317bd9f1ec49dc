// Package resolve turns a line attribution into the change request that
// landed its commit, through a provider-isolated TTL cache and a request
// coalescer so concurrent lookups for the same commit cost one network call.
package resolve

import (
	"context"

	"github.com/google/uuid"

	"revlens/internal/blame"
	"revlens/internal/hosting"
	"revlens/internal/logging"
)

// Outcome is the tri-state result of a resolution. Checked means a
// definitive answer exists, nil included. Loading means another caller's
// resolution for the same commit is still in flight. Neither set means the
// lookup could not be attempted or was abandoned.
type Outcome struct {
	ChangeRequest *hosting.ChangeRequest
	Checked       bool
	Loading       bool
}

// RemoteSource supplies the repository's remote URL. ok is false when the
// repository has no usable remote.
type RemoteSource interface {
	RemoteURL() (string, bool)
}

// Recorder receives settled resolutions for the history log. Implementations
// must tolerate a nil change request and a non-nil error.
type Recorder interface {
	RecordResolution(providerID, commitID string, cr *hosting.ChangeRequest, resolveErr error)
}

// Engine orchestrates remote detection, caching, coalescing and the
// provider call for one resolution.
type Engine struct {
	registry  *hosting.Registry
	cache     *Cache
	coalescer *Coalescer
	remotes   RemoteSource
	notifier  hosting.Notifier
	recorder  Recorder
	logger    *logging.Logger
}

// Options configures an Engine. Registry, Cache and Remotes are required;
// the rest are optional.
type Options struct {
	Registry *hosting.Registry
	Cache    *Cache
	Remotes  RemoteSource
	Notifier hosting.Notifier
	Recorder Recorder
	Logger   *logging.Logger
}

// NewEngine creates a resolution engine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(logging.Config{Level: logging.ErrorLevel, Format: logging.HumanFormat})
	}
	return &Engine{
		registry:  opts.Registry,
		cache:     opts.Cache,
		coalescer: NewCoalescer(),
		remotes:   opts.Remotes,
		notifier:  opts.Notifier,
		recorder:  opts.Recorder,
		logger:    logger,
	}
}

// Cache exposes the engine's cache for mutation-signal wiring.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Resolve maps a line attribution to its change request.
//
// The outcome is never cached when it reflects local configuration (no
// remote, no matching provider, no credential): those conditions can change
// without any network traffic and must stay retryable. Provider failures
// are cached as nil so an erroring host is not hammered once per line.
// Cancellation is cooperative: it is checked before starting and again
// right after the provider call settles, and a cancelled caller writes
// nothing to the cache.
func (e *Engine) Resolve(ctx context.Context, attr blame.LineAttribution) Outcome {
	if attr.CommitID == "" || attr.CommitID == blame.ZeroCommitID {
		return Outcome{}
	}

	remoteURL, ok := e.remotes.RemoteURL()
	if !ok {
		e.logger.Debug("no usable remote, skipping resolution", nil)
		return Outcome{}
	}

	provider, remote, ok := e.registry.Detect(remoteURL)
	if !ok {
		e.logger.Debug("no provider claims remote", logging.Fields{"remote": remoteURL})
		return Outcome{}
	}
	providerID := provider.Identity().ID

	if cr, hit := e.cache.Get(providerID, attr.CommitID); hit {
		return Outcome{ChangeRequest: cr, Checked: true}
	}

	if e.coalescer.InFlight(providerID, attr.CommitID) {
		return Outcome{Loading: true}
	}

	if !provider.HasCredential() {
		e.logger.Debug("provider has no credential", logging.Fields{"provider": providerID})
		return Outcome{}
	}

	if ctx.Err() != nil {
		return Outcome{}
	}

	requestID := uuid.NewString()
	e.logger.Debug("resolving change request", logging.Fields{
		"request_id": requestID,
		"provider":   providerID,
		"commit":     attr.CommitID,
	})

	// The provider call deliberately outlives this caller's context: other
	// callers may be riding the same coalesced flight, and its result is
	// still worth caching even when the trigger walked away.
	callCtx := context.WithoutCancel(ctx)
	cr, err := e.coalescer.Do(providerID, attr.CommitID, func() (*hosting.ChangeRequest, error) {
		return provider.ResolveChangeRequest(callCtx, remote, attr.CommitID)
	})

	if ctx.Err() != nil {
		e.logger.Debug("resolution abandoned by caller", logging.Fields{"request_id": requestID})
		return Outcome{}
	}

	if err != nil {
		e.cache.Set(providerID, attr.CommitID, nil)
		e.record(providerID, attr.CommitID, nil, err)

		if pe, ok := hosting.AsProviderError(err); ok {
			e.logger.Warn("provider resolution failed", logging.Fields{
				"request_id": requestID,
				"provider":   providerID,
				"kind":       string(pe.Kind),
				"error":      pe.Message,
			})
			if e.notifier != nil {
				e.notifier.Notify(pe, provider.Identity())
			}
		} else {
			e.logger.Warn("provider resolution failed", logging.Fields{
				"request_id": requestID,
				"provider":   providerID,
				"error":      err.Error(),
			})
		}
		return Outcome{}
	}

	e.cache.Set(providerID, attr.CommitID, cr)
	e.record(providerID, attr.CommitID, cr, nil)

	fields := logging.Fields{"request_id": requestID, "provider": providerID, "commit": attr.CommitID}
	if cr != nil {
		fields["number"] = cr.Number
	}
	e.logger.Debug("resolution settled", fields)

	return Outcome{ChangeRequest: cr, Checked: true}
}

func (e *Engine) record(providerID, commitID string, cr *hosting.ChangeRequest, err error) {
	if e.recorder != nil {
		e.recorder.RecordResolution(providerID, commitID, cr, err)
	}
}
