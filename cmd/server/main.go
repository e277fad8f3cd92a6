package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-builder/internal/adapter/bot"
	"resume-builder/internal/adapter/delivery"
	httpadapter "resume-builder/internal/adapter/http"
	"resume-builder/internal/app"
	"resume-builder/internal/config"
	"resume-builder/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	log := logger.New(level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	var keys httpadapter.KeyVerifier
	if a.Keys != nil {
		keys = a.Keys
	} else {
		log.Warn("ACCESS_KEY_SECRET not set; export routes are open")
	}
	h := httpadapter.NewHandler(a.Exporter, a.Snapshots, keys, log)

	if cfg.Discord.Token != "" {
		if a.Keys == nil {
			log.Warn("discord bot disabled: it needs ACCESS_KEY_SECRET")
		} else {
			b, err := bot.New(cfg.Discord.Token, a.Keys, a.Snapshots, a.Exporter, log)
			if err != nil {
				return err
			}
			if err := b.Start(); err != nil {
				return err
			}
			defer b.Close()
			if cfg.Discord.ChannelID != "" {
				h.WithDelivery(delivery.NewDiscord(b.Session(), cfg.Discord.ChannelID, log))
			}
		}
	}

	srv := httpadapter.NewApp(h)
	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Server.Port, "strategy", cfg.Render.Strategy)
		errc <- srv.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	return srv.ShutdownWithTimeout(10 * time.Second)
}
