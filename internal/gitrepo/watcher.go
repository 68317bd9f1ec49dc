package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"revlens/internal/logging"
)

// MutationHandler is called once per debounced burst of repository
// mutations (checkout, fetch, pull, commit).
type MutationHandler func()

// WatcherConfig controls the repository watcher.
type WatcherConfig struct {
	Enabled      bool
	DebounceMs   int
	PollInterval time.Duration
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Enabled:      true,
		DebounceMs:   500,
		PollInterval: 2 * time.Second,
	}
}

// Watcher polls a repository's .git directory for history-changing
// operations and fires a payload-free mutation signal. Polling instead of
// fsnotify keeps it dependency-light and portable across platforms and
// network filesystems.
type Watcher struct {
	config    WatcherConfig
	logger    *logging.Logger
	handler   MutationHandler
	gitDir    string
	debouncer *Debouncer

	lastHead      string
	lastIndex     time.Time
	lastFetchHead time.Time

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for one repository.
func NewWatcher(repo *Repo, config WatcherConfig, logger *logging.Logger, handler MutationHandler) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		config:    config,
		logger:    logger,
		handler:   handler,
		gitDir:    filepath.Join(repo.Root(), ".git"),
		debouncer: NewDebouncer(time.Duration(config.DebounceMs) * time.Millisecond),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins polling. It is a no-op when the watcher is disabled.
func (w *Watcher) Start() {
	if !w.config.Enabled {
		w.logger.Debug("repository watcher disabled", nil)
		return
	}

	w.lastHead = w.readHead()
	w.lastIndex = w.modTime("index")
	w.lastFetchHead = w.modTime("FETCH_HEAD")

	w.logger.Debug("watching repository", logging.Fields{
		"gitDir":     w.gitDir,
		"debounceMs": w.config.DebounceMs,
	})

	w.wg.Add(1)
	go w.poll()
}

// Stop stops polling and drops any pending signal.
func (w *Watcher) Stop() {
	w.cancel()
	w.wg.Wait()
	w.debouncer.Cancel()
}

func (w *Watcher) poll() {
	defer w.wg.Done()

	interval := w.config.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.ctx.Done():
			return
		}
	}
}

// check compares the current .git markers against the last observed ones.
// HEAD covers commits and checkouts, the index covers staging, FETCH_HEAD
// covers fetches and pulls.
func (w *Watcher) check() {
	w.mu.Lock()
	changed := false

	if head := w.readHead(); head != "" && head != w.lastHead {
		w.lastHead = head
		changed = true
	}
	if idx := w.modTime("index"); !idx.IsZero() && idx.After(w.lastIndex) {
		w.lastIndex = idx
		changed = true
	}
	if fh := w.modTime("FETCH_HEAD"); !fh.IsZero() && fh.After(w.lastFetchHead) {
		w.lastFetchHead = fh
		changed = true
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	w.debouncer.Trigger(func() {
		w.logger.Debug("repository mutation detected", logging.Fields{"gitDir": w.gitDir})
		if w.handler != nil {
			w.handler()
		}
	})
}

func (w *Watcher) readHead() string {
	data, err := os.ReadFile(filepath.Join(w.gitDir, "HEAD"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (w *Watcher) modTime(name string) time.Time {
	info, err := os.Stat(filepath.Join(w.gitDir, name))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
