package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cooknet/internal/antispam"
	"cooknet/internal/caption"
	"cooknet/internal/config"
	"cooknet/internal/dialogue"
	"cooknet/internal/scheduler"
	"cooknet/internal/store"
	"cooknet/internal/telegram"
	"cooknet/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg(".env file not found")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg.LogLevel, cfg.LogPretty)

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	st := store.New(db)

	captioner, err := caption.NewFactory(cfg).CreateClient(cfg.CaptionProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create caption client")
	}

	chatGate := antispam.New(cfg.ChatCooldown)
	webGate := antispam.New(cfg.WebCooldown)
	dialogs := dialogue.NewManager(cfg.SessionTimeout)

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		st,
		chatGate,
		dialogs,
		captioner,
		cfg.CaptionTimeout,
		cfg.SiteURL,
		log.Logger,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	webhookPath := ""
	if cfg.WebhookEnabled {
		webhookPath = bot.WebhookPath()
		webhookURL := strings.TrimRight(cfg.SiteURL, "/") + webhookPath
		if err := bot.RegisterWebhook(webhookURL); err != nil {
			log.Fatal().Err(err).Msg("failed to register webhook")
		}
		go bot.Run(ctx)
	} else {
		go bot.StartPolling(ctx)
	}

	sched := scheduler.New(log.Logger)
	mustAddSweep(sched, "@every 10m", "chat-gate", chatGate.Sweep)
	mustAddSweep(sched, "@every 10m", "web-gate", webGate.Sweep)
	mustAddSweep(sched, "@every 5m", "dialogue-sessions", dialogs.SweepExpired)
	sched.Start()
	defer sched.Stop()

	srv := web.NewServer(
		st,
		webGate,
		captioner,
		cfg.CaptionTimeout,
		cfg.ChallengeAnswer,
		cfg.JWTSecret,
		bot,
		webhookPath,
		log.Logger,
	)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}

func mustAddSweep(s *scheduler.Scheduler, spec, name string, fn func() int) {
	if err := s.AddSweep(spec, name, fn); err != nil {
		log.Fatal().Err(err).Str("sweep", name).Msg("failed to schedule sweep")
	}
}

func setupLogger(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
