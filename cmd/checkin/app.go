package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/checkin/internal/checkin"
	"github.com/sandeepkv93/checkin/internal/config"
	"github.com/sandeepkv93/checkin/internal/engine"
	"github.com/sandeepkv93/checkin/internal/logging"
	"github.com/sandeepkv93/checkin/internal/notify"
	"github.com/sandeepkv93/checkin/internal/scheduler"
	"github.com/sandeepkv93/checkin/internal/storage"
	"github.com/sandeepkv93/checkin/internal/surface"
	"github.com/sandeepkv93/checkin/internal/update"
)

const deliveryBuffer = 16

type app struct {
	cfg     config.Runtime
	log     *zap.Logger
	repo    *storage.SQLiteRepository
	journal *checkin.Journal
}

func loadApp(ctx context.Context, configPath string, debug bool) (*app, error) {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogPath, debug)
	if err != nil {
		return nil, err
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	journal, err := checkin.NewJournal(checkin.JournalOptions{Repo: repo})
	if err != nil {
		_ = repo.Close()
		_ = log.Sync()
		return nil, err
	}
	a := &app{cfg: cfg, log: log, repo: repo, journal: journal}
	seeded, err := journal.SeedSettings(ctx, cfg.Settings())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}
	if seeded {
		log.Info("settings seeded from config", zap.Duration("interval", cfg.Interval))
	}
	return a, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.repo.Close()
}

// runTUI wires the reminder pipeline around the interactive dashboard and
// blocks until the user quits.
func (a *app) runTUI(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := scheduler.NewStore(a.cfg.PendingLimit, deliveryBuffer)
	store.Start()
	defer store.Stop()

	pinned := surface.NewPinned()
	eng, err := engine.New(engine.Options{
		Store:    store,
		Surface:  surface.NewFanout(pinned, surface.NewFile(a.cfg.SurfaceFile)),
		Activity: a.journal,
		Planner:  a.cfg.Planner(),
		Logger:   a.log.Named("engine"),
		Interval: a.cfg.Interval,
		Sound:    a.cfg.NotificationSound,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	handler, err := checkin.NewHandler(a.journal, eng, a.log.Named("checkin"))
	if err != nil {
		return err
	}
	if _, err := handler.Launch(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := handler.Stop(context.Background()); stopErr != nil {
			a.log.Warn("stop session on exit", zap.Error(stopErr))
			err = errors.Join(err, stopErr)
		}
	}()

	alarms, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	var desktop notify.Desktop = notify.NoopDesktop{}
	if a.cfg.DesktopNotifications {
		desktop = notify.NewExecDesktop()
	}
	relay := notify.NewRelay(store.C(), eng, desktop, a.log.Named("notify"))
	go relay.Run(ctx)

	program := tea.NewProgram(update.NewModel(update.Deps{
		Handler:   handler,
		Countdown: pinned,
		Alarms:    alarms,
		Context:   ctx,
	}), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("checkin failed: %w", err)
	}
	a.log.Info("tui exited",
		zap.Uint64("delivered", relay.Delivered()),
		zap.Uint64("alarms", relay.Alarms()),
		zap.Uint64("dropped", store.Dropped()),
	)
	return nil
}
