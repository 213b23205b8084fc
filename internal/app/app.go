// Package app assembles the notifier: credentials and settings in,
// one watch loop plus the optional heartbeat out.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"

	"hwbot/internal/config"
	"hwbot/internal/heartbeat"
	"hwbot/internal/notifier"
	"hwbot/internal/practicum"
	"hwbot/internal/transport/telegram"
	"hwbot/internal/watcher"
	logx "hwbot/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	adapter *telegram.Adapter
	notify  *notifier.Service
	watch   *watcher.Service
	heart   *heartbeat.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds the full pipeline. Any error here is a startup-fatal condition:
// missing credentials, an invalid settings file, or an unreachable bot token.
func New(cfgPath string) (*App, error) {
	boot := logx.NewConsole("info")

	creds, err := config.LoadCredentials()
	if err != nil {
		// Name every missing variable before aborting.
		boot.Error("credentials check failed", logx.Err(err))
		return nil, err
	}

	cfgMgr := config.NewManager(cfgPath)
	cfg, err := cfgMgr.Load()
	if err != nil {
		boot.Error("settings file rejected", logx.String("path", cfgPath), logx.Err(err))
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	cfgMgr.SetLogger(log.With(logx.String("component", "config")))

	adapter, err := telegram.New(creds.BotToken, log.With(logx.String("component", "telegram")))
	if err != nil {
		log.Error("telegram bot init failed", logx.Err(err))
		logSvc.Close()
		return nil, err
	}

	// Durations were validated by cfgMgr.Load.
	timeout, _ := cfg.RequestTimeout()
	interval, _ := cfg.PollInterval()

	client := practicum.NewClient(practicum.ClientConfig{
		Endpoint: cfg.Practicum.Endpoint,
		Token:    creds.PracticumToken,
		Timeout:  timeout,
	}, log.With(logx.String("component", "practicum")))

	notify := notifier.New(adapter, creds.ChatID, cfg.RatePerSec(),
		log.With(logx.String("component", "notifier")))

	watch := watcher.New(client, notify, interval,
		log.With(logx.String("component", "watcher")))

	heart, err := heartbeat.New(cfg.Heartbeat.Schedule, notify, watch.Snapshot,
		log.With(logx.String("component", "heartbeat")))
	if err != nil {
		log.Error("heartbeat init failed", logx.Err(err))
		logSvc.Close()
		return nil, err
	}

	return &App{
		cfgMgr:  cfgMgr,
		logSvc:  logSvc,
		log:     log,
		adapter: adapter,
		notify:  notify,
		watch:   watch,
		heart:   heart,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	rctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.watch.Run(rctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.applyLoop(rctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgMgr.Watch(rctx); err != nil {
			// Hot reload is a convenience; the loop keeps running without it.
			a.log.Warn("settings watch unavailable", logx.Err(err))
		}
	}()

	a.heart.Start()

	// Under systemd Type=notify this flips the unit to active; elsewhere
	// it reports (false, nil) and is ignored.
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); ok || err != nil {
		a.log.Debug("sd_notify ready", logx.Bool("acked", ok), logx.Err(err))
	}

	a.log.Info("hwbot started",
		logx.String("bot", a.adapter.Username()),
		logx.Duration("interval", a.watch.Interval()))
	return nil
}

// applyLoop re-applies hot-reloadable settings as the manager publishes them.
func (a *App) applyLoop(ctx context.Context) {
	ch := a.cfgMgr.Subscribe(4)
	defer a.cfgMgr.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-ch:
			if !ok || cfg == nil {
				return
			}
			a.apply(cfg)
		}
	}
}

func (a *App) apply(cfg *config.Config) {
	a.logSvc.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.notify.Apply(cfg.RatePerSec())
	if interval, err := cfg.PollInterval(); err == nil {
		a.watch.SetInterval(interval)
	}
	a.log.Info("settings applied", logx.Duration("interval", a.watch.Interval()))
}

func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if a.cancel != nil {
		a.cancel()
	}
	a.heart.Stop(ctx)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.log.Info("hwbot stopped")
	case <-ctx.Done():
		a.log.Warn("shutdown cut short", logx.Err(ctx.Err()))
	}

	return a.logSvc.Close()
}
