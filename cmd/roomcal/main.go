package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"roomcal/internal/calendar"
	"roomcal/internal/capture"
	"roomcal/internal/config"
	"roomcal/internal/fetch"
	appLog "roomcal/internal/log"
	"roomcal/internal/pipeline"
	"roomcal/internal/submit"
	"roomcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	snapshot   bool
}

func main() {
	flags := parseFlags()

	loadEnvProfile()
	appLog.SetLevelFromString(os.Getenv("LOG_LEVEL"))
	appLog.Info("roomcal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"upstream", conf.UpstreamURL,
		"refresh", conf.RefreshCron,
		"locale", conf.Locale,
		"narrow_breakpoint_px", conf.NarrowBreakpointPx,
		"snapshot_enabled", conf.Snapshot.Enabled,
		"once", flags.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Wiring: the UI state is the single widget instance; the controller
	// owns it and everything mutates through the controller.
	timeout := time.Duration(conf.RequestTimeoutSec) * time.Second
	client := fetch.NewClient(conf.UpstreamURL, timeout)
	ui := web.NewUIState()
	ctrl := calendar.New(ui, ui, ui)
	pipe := pipeline.New(client, ctrl)
	sub := submit.New(conf.UpstreamURL, timeout, ui, pipe.Run)
	srv := web.NewServer(conf, client, ctrl, pipe, sub, ui)

	runPass := func(ctx context.Context) {
		if err := pipe.Run(ctx); err != nil {
			// Previous render stays; the next cycle retries.
			return
		}
		if conf.Snapshot.Enabled || flags.snapshot {
			snapshotKiosk(ctx, conf)
		}
	}

	// The server is needed even for -once: the snapshot capture drives a
	// headless browser against the served kiosk page.
	httpSrv := &http.Server{Addr: conf.Listen, Handler: srv.Handler()}
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	// Initial render before the first cron tick.
	runPass(ctx)

	if !flags.once {
		sched := cron.New()
		if _, err := sched.AddFunc(conf.RefreshCron, func() { runPass(ctx) }); err != nil {
			appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()

		<-ctx.Done()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	appLog.Info("roomcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/roomcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one synchronization pass and exit")
	flag.BoolVar(&cfg.snapshot, "snapshot", false, "Capture a kiosk PNG after each pass even if disabled in config")

	flag.Parse()

	return cfg
}

// loadEnvProfile loads .env or .env.production depending on ENVIRONMENT,
// matching the deployment convention of the booking API. Missing files
// are fine; real environment variables win over file values.
func loadEnvProfile() {
	name := ".env"
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ENVIRONMENT")), "production") {
		name = ".env.production"
	}
	if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
		appLog.Warn("env profile not loaded", "file", name, "reason", err.Error())
	}
}

func snapshotKiosk(ctx context.Context, conf *config.Config) {
	addr := conf.Listen
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	err := capture.SnapshotPNG(ctx, capture.Options{
		URL:        "http://" + addr + "/",
		OutputPath: conf.Snapshot.Output,
		Width:      conf.Snapshot.Width,
		Height:     conf.Snapshot.Height,
	})
	if err != nil {
		appLog.Error("kiosk snapshot failed", err)
		return
	}
	appLog.Info("kiosk snapshot written", "output", conf.Snapshot.Output)
}
