package resolve

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"revlens/internal/blame"
	"revlens/internal/hosting"
)

type staticRemote string

func (s staticRemote) RemoteURL() (string, bool) { return string(s), s != "" }

type engineProvider struct {
	id      string
	host    string
	hasCred bool
	calls   int32
	result  *hosting.ChangeRequest
	err     error
	block   chan struct{}
}

func (p *engineProvider) Identity() hosting.Identity {
	return hosting.Identity{ID: p.id, DisplayName: p.id}
}
func (p *engineProvider) HasCredential() bool      { return p.hasCred }
func (p *engineProvider) ResetNotificationState() {}

func (p *engineProvider) IsProviderURL(raw string) bool {
	host, _, ok := hosting.SplitRemoteURL(raw)
	return ok && host == p.host
}

func (p *engineProvider) ParseRemoteURL(raw string) (hosting.RemoteIdentity, bool) {
	host, path, ok := hosting.SplitRemoteURL(raw)
	if !ok {
		return hosting.RemoteIdentity{}, false
	}
	return hosting.RemoteIdentity{Host: host, ProjectPath: path}, true
}

func (p *engineProvider) ResolveChangeRequest(ctx context.Context, remote hosting.RemoteIdentity, commitID string) (*hosting.ChangeRequest, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.block != nil {
		<-p.block
	}
	return p.result, p.err
}

type captureNotifier struct {
	errs []*hosting.ProviderError
}

func (n *captureNotifier) Notify(pe *hosting.ProviderError, id hosting.Identity) {
	n.errs = append(n.errs, pe)
}

func newTestEngine(p *engineProvider, remote string, opts Options) *Engine {
	reg := hosting.NewRegistry()
	reg.Register(p)
	opts.Registry = reg
	if opts.Cache == nil {
		opts.Cache = NewCache(time.Minute)
	}
	opts.Remotes = staticRemote(remote)
	return NewEngine(opts)
}

func attr(commit string) blame.LineAttribution {
	return blame.LineAttribution{CommitID: commit, Author: "Dev", LineNumber: 1}
}

func TestEngineResolveAndCache(t *testing.T) {
	p := &engineProvider{
		id: "gitlab", host: "gitlab.com", hasCred: true,
		result: &hosting.ChangeRequest{Number: 12, State: hosting.StateMerged},
	}
	e := newTestEngine(p, "git@gitlab.com:group/project.git", Options{})

	out := e.Resolve(context.Background(), attr("abc123"))
	if !out.Checked || out.Loading {
		t.Fatalf("outcome = %+v, want checked", out)
	}
	if out.ChangeRequest == nil || out.ChangeRequest.Number != 12 {
		t.Fatalf("change request = %+v", out.ChangeRequest)
	}

	// Second resolution is served from the cache.
	out = e.Resolve(context.Background(), attr("abc123"))
	if !out.Checked || out.ChangeRequest == nil || out.ChangeRequest.Number != 12 {
		t.Fatalf("cached outcome = %+v", out)
	}
	if got := atomic.LoadInt32(&p.calls); got != 1 {
		t.Fatalf("provider calls = %d, want 1", got)
	}
}

func TestEngineCachesNullResult(t *testing.T) {
	p := &engineProvider{id: "github", host: "github.com", hasCred: true, result: nil}
	e := newTestEngine(p, "https://github.com/owner/repo.git", Options{})

	out := e.Resolve(context.Background(), attr("abc123"))
	if !out.Checked || out.ChangeRequest != nil {
		t.Fatalf("outcome = %+v, want checked with nil request", out)
	}

	out = e.Resolve(context.Background(), attr("abc123"))
	if !out.Checked || out.ChangeRequest != nil {
		t.Fatalf("cached outcome = %+v", out)
	}
	if got := atomic.LoadInt32(&p.calls); got != 1 {
		t.Fatalf("provider calls = %d, want 1 (null must be cached)", got)
	}
}

func TestEngineConfigurationIncomplete(t *testing.T) {
	t.Run("no remote", func(t *testing.T) {
		p := &engineProvider{id: "gitlab", host: "gitlab.com", hasCred: true}
		e := newTestEngine(p, "", Options{})
		if out := e.Resolve(context.Background(), attr("abc")); out.Checked || out.Loading {
			t.Fatalf("outcome = %+v", out)
		}
	})

	t.Run("no matching provider", func(t *testing.T) {
		p := &engineProvider{id: "gitlab", host: "gitlab.com", hasCred: true}
		e := newTestEngine(p, "https://bitbucket.org/owner/repo.git", Options{})
		if out := e.Resolve(context.Background(), attr("abc")); out.Checked || out.Loading {
			t.Fatalf("outcome = %+v", out)
		}
	})

	t.Run("no credential", func(t *testing.T) {
		p := &engineProvider{id: "gitlab", host: "gitlab.com", hasCred: false}
		e := newTestEngine(p, "git@gitlab.com:g/p.git", Options{})
		if out := e.Resolve(context.Background(), attr("abc")); out.Checked || out.Loading {
			t.Fatalf("outcome = %+v", out)
		}
		if atomic.LoadInt32(&p.calls) != 0 {
			t.Error("provider must not be called without a credential")
		}
		// Not cached: adding a credential later must trigger a real call.
		p.hasCred = true
		p.result = &hosting.ChangeRequest{Number: 1}
		if out := e.Resolve(context.Background(), attr("abc")); !out.Checked {
			t.Fatalf("outcome after credential appeared = %+v", out)
		}
	})

	t.Run("uncommitted line", func(t *testing.T) {
		p := &engineProvider{id: "gitlab", host: "gitlab.com", hasCred: true}
		e := newTestEngine(p, "git@gitlab.com:g/p.git", Options{})
		if out := e.Resolve(context.Background(), attr(blame.ZeroCommitID)); out.Checked || out.Loading {
			t.Fatalf("outcome = %+v", out)
		}
		if atomic.LoadInt32(&p.calls) != 0 {
			t.Error("zero commit must not reach the provider")
		}
	})
}

func TestEngineReportsLoadingWhileInFlight(t *testing.T) {
	p := &engineProvider{
		id: "gitlab", host: "gitlab.com", hasCred: true,
		result: &hosting.ChangeRequest{Number: 4},
		block:  make(chan struct{}),
	}
	e := newTestEngine(p, "git@gitlab.com:g/p.git", Options{})

	done := make(chan Outcome, 1)
	go func() { done <- e.Resolve(context.Background(), attr("abc123")) }()

	// Wait for the first resolution to reach the provider.
	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&p.calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("first resolution never started")
		case <-time.After(time.Millisecond):
		}
	}

	out := e.Resolve(context.Background(), attr("abc123"))
	if !out.Loading || out.Checked {
		t.Fatalf("second caller outcome = %+v, want loading", out)
	}

	close(p.block)
	first := <-done
	if !first.Checked || first.ChangeRequest == nil || first.ChangeRequest.Number != 4 {
		t.Fatalf("first caller outcome = %+v", first)
	}
	if got := atomic.LoadInt32(&p.calls); got != 1 {
		t.Fatalf("provider calls = %d, want 1", got)
	}
}

func TestEngineCancellationAfterSettleSkipsCacheWrite(t *testing.T) {
	block := make(chan struct{})
	p := &engineProvider{
		id: "gitlab", host: "gitlab.com", hasCred: true,
		result: &hosting.ChangeRequest{Number: 6},
		block:  block,
	}
	cache := NewCache(time.Minute)
	e := newTestEngine(p, "git@gitlab.com:g/p.git", Options{Cache: cache})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Outcome, 1)
	go func() { done <- e.Resolve(ctx, attr("abc123")) }()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&p.calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("resolution never started")
		case <-time.After(time.Millisecond):
		}
	}

	// Cancel while the provider call is in flight, then let it settle.
	cancel()
	close(block)

	out := <-done
	if out.Checked || out.Loading || out.ChangeRequest != nil {
		t.Fatalf("outcome = %+v, want empty", out)
	}
	if _, hit := cache.Get("gitlab", "abc123"); hit {
		t.Fatal("cancelled resolution must not write the cache")
	}
}

func TestEngineProviderFailure(t *testing.T) {
	pe := &hosting.ProviderError{
		Kind:         hosting.FailureInvalidCredential,
		Message:      "token rejected",
		StatusCode:   401,
		ShouldNotify: true,
	}
	p := &engineProvider{id: "gitlab", host: "gitlab.com", hasCred: true, err: pe}
	notifier := &captureNotifier{}
	cache := NewCache(time.Minute)
	e := newTestEngine(p, "git@gitlab.com:g/p.git", Options{Cache: cache, Notifier: notifier})

	out := e.Resolve(context.Background(), attr("abc123"))
	if out.Checked || out.ChangeRequest != nil {
		t.Fatalf("outcome = %+v", out)
	}

	if len(notifier.errs) != 1 || notifier.errs[0].Kind != hosting.FailureInvalidCredential {
		t.Fatalf("notifier got %+v", notifier.errs)
	}

	// Failure caches nil so an erroring provider is not hammered per line.
	got, hit := cache.Get("gitlab", "abc123")
	if !hit || got != nil {
		t.Fatalf("cache after failure: hit=%v value=%+v", hit, got)
	}
	out = e.Resolve(context.Background(), attr("abc123"))
	if !out.Checked || out.ChangeRequest != nil {
		t.Fatalf("second outcome = %+v, want cached nil", out)
	}
	if atomic.LoadInt32(&p.calls) != 1 {
		t.Fatalf("provider calls = %d, want 1", p.calls)
	}
}

func TestEngineMutationSignalClearsCache(t *testing.T) {
	p := &engineProvider{
		id: "gitlab", host: "gitlab.com", hasCred: true,
		result: &hosting.ChangeRequest{Number: 2},
	}
	cache := NewCache(time.Hour)
	e := newTestEngine(p, "git@gitlab.com:g/p.git", Options{Cache: cache})

	e.Resolve(context.Background(), attr("abc123"))
	if atomic.LoadInt32(&p.calls) != 1 {
		t.Fatalf("calls = %d", p.calls)
	}

	e.Cache().Clear()

	e.Resolve(context.Background(), attr("abc123"))
	if got := atomic.LoadInt32(&p.calls); got != 2 {
		t.Fatalf("calls = %d, want 2 after mutation signal", got)
	}
}
