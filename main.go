package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/pflag"

	"github.com/renflow/renflow-desktop/internal/bridge"
	"github.com/renflow/renflow-desktop/internal/config"
	"github.com/renflow/renflow-desktop/internal/download"
	"github.com/renflow/renflow-desktop/internal/events"
	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/model"
	"github.com/renflow/renflow-desktop/internal/notify"
	"github.com/renflow/renflow-desktop/internal/platform"
	"github.com/renflow/renflow-desktop/internal/proxy"
	"github.com/renflow/renflow-desktop/internal/store"
	"github.com/renflow/renflow-desktop/internal/ui"
	"github.com/renflow/renflow-desktop/internal/web"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultConfigPath(), "path to the YAML configuration file")
	pflag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := new(slog.LevelVar)
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)
	logger.Info("starting", "app", config.AppName, "version", version, "os", runtime.GOOS, "arch", platform.Arch())

	fyneApp := app.NewWithID(config.AppID)

	kv, err := openStore(cfg.Store, fyneApp)
	if err != nil {
		return err
	}
	defer kv.Close()

	settings := config.NewSettings(kv, logger)
	level.Set(settings.GetSlogLevel())
	logger.Info("log level", "log_level", settings.GetLogLevel())

	proxyServer, err := proxy.New(cfg.Proxy.Addr, logger)
	if err != nil {
		return err
	}
	go func() {
		if err := proxyServer.Serve(); err != nil {
			logger.Error("proxy stopped", "error", err)
		}
	}()

	rt := config.Runtime{
		Version:    version,
		ProxyPort:  proxyServer.Port(),
		BridgeAddr: cfg.Bridge.Addr,
	}
	logger.Info("proxy started", "port", rt.ProxyPort)

	localization := ui.NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	window := ui.NewWindow(fyneApp, localization, rt, func() {
		if err := platform.OpenInBrowser(cfg.Bridge.UIURL); err != nil {
			logger.Warn("failed to open UI", "url", cfg.Bridge.UIURL, "error", err)
		}
	})
	gate := ui.NewDialogGate(window.Fyne(), localization, settings, logger)
	fyneApp.Settings().SetTheme(ui.NewCompactTheme())
	window.SetOnSettings(ui.NewSettingsDialog(settings, localization, window.Fyne(), level.Set, logger).Show)

	daemon, closeDaemon := newDaemon(cfg.Notify, fyneApp, logger)
	defer closeDaemon()
	dispatcher := notify.NewDispatcher(daemon, cfg.Notify.ImageCacheDir, logger)
	reaper := notify.NewReaper(daemon, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := bridge.NewHub(logger)
	go hub.Run(ctx)

	emitter := events.Multi{hub}
	if events.IsTerminal(os.Stdout) {
		emitter = append(emitter, events.NewConsole(os.Stdout))
	}

	downloads := download.NewService(gate, emitter, logger)
	downloads.SetOverwriteTexts(gate.OverwriteTexts())
	downloads.SetUpdateCallback(func(req model.DownloadRequest, status model.DownloadStatus) {
		logger.Debug("download status", "file", req.FileName, "status", status.String())
	})

	server := bridge.NewServer(cfg.Bridge, bridge.Deps{
		Runtime:       rt,
		Downloads:     downloads,
		Notifications: dispatcher,
		Reaper:        reaper,
		Web:           web.NewClient(cfg.HTTP.RedirectTimeout, cfg.HTTP.MaxRedirects, logger),
		Window:        window,
		Store:         kv,
	}, hub, logger)
	go func() {
		if err := server.ListenAndServe(cfg.Bridge.Addr); err != nil {
			logger.Error("bridge stopped", "error", err)
		}
	}()

	if removed, err := notify.PruneImageCache(cfg.Notify.ImageCacheDir, cfg.Notify.ImageMaxAge, time.Now()); err != nil {
		logger.Warn("failed to prune notification images", "error", err)
	} else if removed > 0 {
		logger.Debug("pruned notification images", "count", removed)
	}

	window.ShowAndRun()

	logger.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("bridge shutdown failed", "error", err)
	}
	if err := proxyServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("proxy shutdown failed", "error", err)
	}
	return nil
}

// openStore opens the configured key/value backend
func openStore(cfg config.StoreConfig, fyneApp fyne.App) (store.Store, error) {
	switch cfg.Backend {
	case store.BackendSQLite:
		if err := platform.CreateDirectoryIfNotExists(filepath.Dir(cfg.Path)); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return store.NewSQLiteStore(cfg.Path)
	default:
		return store.NewPreferencesStore(fyneApp), nil
	}
}

// newDaemon prefers the freedesktop service on the session bus and falls back to Fyne
func newDaemon(cfg config.NotifyConfig, fyneApp fyne.App, logger *slog.Logger) (notify.Daemon, func()) {
	if runtime.GOOS != platform.OSWindows && runtime.GOOS != platform.OSDarwin {
		d, err := notify.NewDBusDaemon(cfg.AppName, logger)
		if err == nil {
			return d, closeQuietly(d, logger)
		}
		logger.Warn("session bus unavailable, using fallback notifications", "error", err)
	}
	return notify.NewFyneDaemon(fyneApp, logger), func() {}
}

func closeQuietly(c io.Closer, logger *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Debug("close failed", "error", err)
		}
	}
}
