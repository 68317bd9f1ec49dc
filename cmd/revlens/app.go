package main

import (
	"time"

	"revlens/internal/config"
	"revlens/internal/gitrepo"
	"revlens/internal/hosting"
	"revlens/internal/logging"
	"revlens/internal/resolve"
	"revlens/internal/storage"
)

// app wires the repository, configuration, providers and engine for one
// command invocation.
type app struct {
	repo     *gitrepo.Repo
	cfg      *config.Config
	logger   *logging.Logger
	creds    *hosting.CredentialStore
	registry *hosting.Registry
	engine   *resolve.Engine
	db       *storage.DB
	history  *storage.History
	watcher  *gitrepo.Watcher
}

// newApp builds the full wiring. withHistory controls whether the SQLite
// history log is opened; quick read-only commands skip it.
func newApp(withHistory bool) (*app, error) {
	repo, err := gitrepo.Open(repoFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(repo.Root())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	creds := hosting.NewCredentialStore()
	for providerID, pc := range cfg.Providers {
		if pc.TokenEnv != "" {
			creds.SetEnvVar(providerID, pc.TokenEnv)
		}
	}

	registry := hosting.NewRegistry()
	registry.Register(hosting.NewGitLabClient(hosting.ClientOptions{
		BaseURL:     cfg.Providers["gitlab"].BaseURL,
		Credentials: creds,
	}))
	registry.Register(hosting.NewGitHubClient(hosting.ClientOptions{
		BaseURL:     cfg.Providers["github"].BaseURL,
		Credentials: creds,
	}))

	// A changed credential deserves a fresh notification if it is also bad.
	creds.OnChange(func(providerID string) {
		registry.ResetNotificationState(providerID)
	})

	a := &app{
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
		creds:    creds,
		registry: registry,
	}

	if withHistory && cfg.History.Enabled {
		db, err := storage.Open(repo.Root(), logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.history = storage.NewHistory(db)
	}

	opts := resolve.Options{
		Registry: registry,
		Cache:    resolve.NewCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second),
		Remotes:  repo,
		Notifier: cliNotifier{},
		Logger:   logger,
	}
	if a.history != nil {
		opts.Recorder = a.history
	}
	a.engine = resolve.NewEngine(opts)

	return a, nil
}

// startWatcher wires the repository mutation signal to a cache clear. Only
// long-running commands need it; one-shot lookups finish before any poll.
func (a *app) startWatcher() {
	wc := gitrepo.WatcherConfig{
		Enabled:      a.cfg.Watcher.Enabled,
		DebounceMs:   a.cfg.Watcher.DebounceMs,
		PollInterval: time.Duration(a.cfg.Watcher.PollIntervalMs) * time.Millisecond,
	}
	a.watcher = gitrepo.NewWatcher(a.repo, wc, a.logger, func() {
		a.engine.Cache().Clear()
	})
	a.watcher.Start()
}

func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.db != nil {
		a.db.Close()
	}
}
