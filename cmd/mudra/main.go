package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()
	cfg := config.FromEnv()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	det, err := app.NewDetector(cfg, log)
	if err != nil {
		log.Error("hand detector unavailable", "error", err)
		os.Exit(1)
	}

	met := metrics.New()
	a := app.New(app.Config{
		Capture:  cfg.Capture,
		Detector: det,
		Metrics:  met,
		Log:      log,
	})

	if cfg.WebDir != "" {
		log.Info("serving static files", "dir", cfg.WebDir)
	}
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(server.Config{
			StaticDir: cfg.WebDir,
			Tracker:   a,
			Metrics:   met,
			Log:       log,
		}),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"addr", cfg.Addr,
		"facing", cfg.Capture.Facing,
		"width", cfg.Capture.Width,
		"height", cfg.Capture.Height,
		"detector", cfg.Detector,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if cfg.Tray {
		// systray owns the main thread until Quit.
		go func() {
			<-sigCh
			log.Info("shutdown signal received")
			shutdown(log, srv, a)
			os.Exit(0)
		}()
		runTray(log, a, browserURL(cfg.Addr))
		shutdown(log, srv, a)
		return
	}

	<-sigCh
	log.Info("shutdown signal received, draining connections")
	shutdown(log, srv, a)
}

func runTray(log *slog.Logger, a *app.App, url string) {
	t := tray.New()

	report := func(op string, err error) {
		if err != nil {
			log.Error(op+" failed", "error", err)
		}
	}
	t.OnStart(func() { report("start capture", a.StartCapture(context.Background())) })
	t.OnStop(func() { report("stop capture", a.StopCapture()) })
	t.OnSwitch(func() { report("switch camera", a.SwitchFacing(context.Background())) })
	t.OnOpen(func() { report("open browser", openBrowser(url)) })

	snapshots, cancel := a.Subscribe()
	defer cancel()
	go func() {
		for s := range snapshots {
			t.Update(s)
		}
	}()

	t.Run()
}

func shutdown(log *slog.Logger, srv *http.Server, a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if err := a.Close(); err != nil {
		log.Error("closing app", "error", err)
	}
	log.Info("server stopped")
}

// browserURL turns a listen address such as ":8080" into a local URL.
func browserURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://localhost" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

