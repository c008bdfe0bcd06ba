package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"videoExplain/config"
	"videoExplain/core"
	"videoExplain/handlers"
	"videoExplain/processors"
	"videoExplain/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		core.Log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		core.Log.Fatalf("invalid config: %v", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "check":
			runCheck(cfg)
		default:
			core.Log.Infof("unknown argument: %s", os.Args[1])
			core.Log.Infof("usage: videoExplain [check]")
			core.Log.Infof("  check - verify configuration and external tools, then exit")
			os.Exit(2)
		}
		return
	}

	if !cfg.HasValidAPI() {
		core.Log.Warnf("API_KEY is not configured; analysis requests will be rejected")
	}
	if !processors.FFmpegAvailable() {
		core.Log.Warnf("ffmpeg not found; videos will be analyzed as a single segment")
	}

	store, err := storage.NewFSStore(filepath.Join(cfg.DataDir, "uploads"))
	if err != nil {
		core.Log.Fatalf("init upload store: %v", err)
	}

	api := handlers.NewAPI(cfg, store, processors.NewOpenAIClient(cfg))
	mux := http.NewServeMux()
	api.Register(mux)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		core.Log.Infof("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			core.Log.Warnf("shutdown: %v", err)
		}
	}()

	core.Log.Infof("server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		core.Log.Fatalf("serve: %v", err)
	}
}

// runCheck verifies the pieces a run depends on and reports each one.
func runCheck(cfg *config.Config) {
	core.Log.Infof("config: ok (port=%s, dataDir=%s)", cfg.Port, cfg.DataDir)
	if cfg.HasValidAPI() {
		core.Log.Infof("api credential: configured (base %s, model %s)", cfg.BaseURL, cfg.ChatModel)
	} else {
		core.Log.Warnf("api credential: missing - analysis requests will be rejected")
	}
	if processors.FFmpegAvailable() {
		core.Log.Infof("ffmpeg: found")
	} else {
		core.Log.Warnf("ffmpeg: not found - videos will be analyzed as a single segment")
	}
}
