package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/AngelCh415/campaign-insights/internal/config"
	"github.com/AngelCh415/campaign-insights/internal/httpx"
	"github.com/AngelCh415/campaign-insights/internal/insight"
)

func main() {
	_ = godotenv.Load() // optional .env, real env wins

	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	gen := insight.NewGenerator(cfg)
	if !cfg.LLMConfigured() {
		logger.Warn("llm provider not configured, deterministic composer only",
			slog.String("provider", cfg.LLMProvider))
	}
	svc := insight.NewService(gen, logger)

	r := httpx.NewRouter(logger, cfg, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("port", cfg.Port),
		slog.String("llm_provider", cfg.LLMProvider))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
