package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eleven-am/goconv"
	"github.com/eleven-am/goconv/internal/config"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	cfg.Validate()

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		slog.Error("logger setup failed", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	if err := cfg.PrepareDirs(); err != nil {
		logger.Error("filesystem preparation failed", "error", err)
		os.Exit(1)
	}

	controller := goconv.NewController(goconv.Options{Config: cfg, Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SelfTestOnStartup {
		results, err := controller.SelfTest(ctx)
		for _, r := range results {
			logger.Info("self-test", "check", r.Description, "passed", r.Passed, "detail", r.Detail)
		}
		if err != nil {
			logger.Error("self-test failed", "error", err)
			os.Exit(1)
		}
	}

	controller.Start(ctx)
	defer controller.Stop()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: controller.Handler(),
	}

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "app", cfg.AppName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
}

// newLogger builds the process logger: text to stderr by default, JSON to
// the configured logfile when one is set.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.LogfilePath == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil)), func() {}, nil
	}

	file, err := os.OpenFile(cfg.LogfilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(file, nil)), func() { file.Close() }, nil
}
