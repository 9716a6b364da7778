package cli

import (
	"fmt"

	"github.com/garrow/portfolio/internal/config"
	"github.com/garrow/portfolio/internal/logger"
	"github.com/garrow/portfolio/internal/notify"
	"github.com/garrow/portfolio/internal/search"
	"github.com/garrow/portfolio/internal/store"
)

// app bundles the store with its side-effect coordinators. Commands
// open one app, mutate through the store, and close it; coordinators
// react to commits on their own and never block the mutation path.
type app struct {
	cfg       *config.Config
	store     *store.Store
	index     *search.Index
	scheduler *notify.Scheduler
	cancels   []func()
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using defaults", logger.F("error", err))
		cfg = config.DefaultConfig()
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		// A store that cannot load its graph is unrecoverable.
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a := &app{cfg: cfg, store: st}

	// Coordinators are best-effort: an index that cannot open degrades
	// search, it does not stop the app.
	idx, err := search.Open(cfg.IndexPath)
	if err != nil {
		logger.Warn("failed to open search index", logger.F("error", err))
	} else {
		a.index = idx
		a.cancels = append(a.cancels, st.OnCommit(idx.HandleCommit))
	}

	a.scheduler = notify.NewScheduler(nil)
	a.cancels = append(a.cancels, st.OnCommit(a.scheduler.HandleCommit))

	// Re-arm reminders for projects persisted with one enabled.
	for _, p := range st.FetchProjects(store.ProjectQuery{}) {
		if p.ReminderEnabled {
			a.scheduler.Schedule(p)
		}
	}

	return a, nil
}

func (a *app) Close() {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.scheduler.Close()
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			logger.Warn("failed to close search index", logger.F("error", err))
		}
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("failed to close store", logger.F("error", err))
	}
}
