package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"suno-forge/internal/config"
	"suno-forge/internal/handlers"
	"suno-forge/internal/httpclient"
	"suno-forge/internal/mediagroup"
	"suno-forge/internal/session"
	"suno-forge/internal/studio"
	"suno-forge/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		panic(err)
	}

	logger := cfg.NewLogger(os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.Error("bot failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	tg, err := telegram.New(telegram.Options{
		Token: cfg.TelegramToken,
		HTTPClient: httpclient.New(httpclient.Options{
			PreferIPv4: cfg.PreferIPv4,
			Timeout:    cfg.HTTPTimeout,
			Logger:     logger,
		}),
		Logger: logger,
		Debug:  cfg.Debug,
	})
	if err != nil {
		return err
	}

	handler := handlers.New(handlers.Options{
		Telegram:     tg,
		Sessions:     session.NewStore(session.Options{MaxEntries: cfg.MaxHistoryMessages}),
		Studio:       studio.NewStore(),
		Logger:       logger,
		BatchWorkers: cfg.BatchWorkers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := newDispatcher(cfg.MaxConcurrent, cfg.RequestTimeout)
	defer d.wait()

	albums := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		OnFlush: func(group mediagroup.Group) {
			d.dispatch(ctx, func(reqCtx context.Context) {
				handler.HandleMediaGroup(reqCtx, group)
			})
		},
	})
	defer func() {
		if n := albums.Close(); n > 0 {
			logger.Info("dropped pending albums", "count", n)
		}
	}()
	handler.SetMediaGroupAggregator(albums)

	updates := tg.Updates(telegram.UpdatesOptions{Timeout: 30 * time.Second})
	defer tg.StopUpdates()
	logger.Info("bot started", "username", tg.Username(), "max_concurrent", cfg.MaxConcurrent)

	for {
		var update telegram.Update
		var ok bool
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case update, ok = <-updates:
		}
		if !ok {
			logger.Info("updates channel closed")
			return nil
		}

		started := d.dispatch(ctx, func(reqCtx context.Context) {
			if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("handle update failed", "update_id", update.UpdateID, "err", err)
			}
		})
		if !started {
			return nil
		}
	}
}
