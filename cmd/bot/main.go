package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/postforge/bot/internal/bot"
	"github.com/postforge/bot/internal/config"
	"github.com/postforge/bot/internal/generator"
	httpapi "github.com/postforge/bot/internal/http"
	"github.com/postforge/bot/internal/publisher"
	"github.com/postforge/bot/internal/scheduler"
	"github.com/postforge/bot/internal/store"
	"github.com/postforge/bot/internal/telegram"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		log.Fatal("failed to create media dir", zap.Error(err))
	}

	st := store.Open(cfg.StateFile, log)
	gen := generator.New(buildBackends(cfg, log), log)
	pub := publisher.New(
		cfg.TwitterAPIKey, cfg.TwitterAPISecret,
		cfg.TwitterAccessToken, cfg.TwitterAccessTokenSecret,
		cfg.PublishTimeout, log,
	)
	tg := telegram.NewClient(cfg.TelegramToken, log)
	b := bot.New(tg, gen, pub, st, cfg.AllowedUserID, cfg.MediaDir, log)
	sched := scheduler.New(st, gen, pub, cfg.TickPeriod, log)

	if cfg.WebhookURL != "" {
		runWebhook(ctx, cfg, log, tg, b)
	} else {
		runPolling(ctx, log, tg, b)
	}

	log.Info("bot started", zap.Duration("tick_period", cfg.TickPeriod))

	ticker := time.NewTicker(cfg.TickPeriod)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			sched.Tick(ctx)
		case <-sigCh:
			log.Info("shutting down")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// buildBackends assembles the generation chain: primary backend first,
// fallback second. Either may be absent.
func buildBackends(cfg *config.Config, log *zap.Logger) []generator.LLMClient {
	var backends []generator.LLMClient

	if cfg.OpenAIAPIKey != "" {
		c, err := generator.NewOpenAIClient(generator.Settings{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			log.Warn("primary backend unavailable", zap.Error(err))
		} else {
			backends = append(backends, c)
		}
	}

	if cfg.FallbackAPIKey != "" {
		c, err := generator.NewOpenAIClient(generator.Settings{
			APIKey:  cfg.FallbackAPIKey,
			Model:   cfg.FallbackModel,
			BaseURL: cfg.FallbackBaseURL,
		})
		if err != nil {
			log.Warn("fallback backend unavailable", zap.Error(err))
		} else {
			backends = append(backends, c)
		}
	}

	return backends
}

func runWebhook(ctx context.Context, cfg *config.Config, log *zap.Logger, tg *telegram.Client, b *bot.Bot) {
	webhookURL := cfg.WebhookURL + "/telegram/webhook/" + cfg.TelegramToken
	if err := tg.SetWebhook(ctx, webhookURL); err != nil {
		log.Fatal("failed to set webhook", zap.Error(err))
	}

	app := httpapi.NewApp(cfg.TelegramToken, log, b.HandleUpdate)
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("webhook server stopped", zap.Error(err))
		}
	}()
	log.Info("webhook mode", zap.String("url", cfg.WebhookURL), zap.String("port", cfg.Port))
}

func runPolling(ctx context.Context, log *zap.Logger, tg *telegram.Client, b *bot.Bot) {
	// A lingering webhook blocks getUpdates.
	if err := tg.DeleteWebhook(ctx); err != nil {
		log.Warn("failed to delete webhook", zap.Error(err))
	}

	poller := telegram.NewPoller(tg, b.HandleUpdate, log)
	go poller.Run(ctx)
	log.Info("long polling mode")
}
