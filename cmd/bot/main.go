package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/api"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/booking"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/bot"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/config"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/database"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/metrics"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/notify"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/reminder"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/session"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("CRONOS_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Fatal().Msg("set telegram.bot_token in config")
	}

	db, err := database.New(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		db.UseRedisCache(rdb, cfg.CacheTTL())
		logger.Info().Str("address", cfg.Redis.Address).Msg("slot lookup cache enabled")
	}

	scheduler := reminder.New(&logger)
	defer scheduler.Stop()

	var notifier notify.Notifier
	if cfg.WhatsApp.Enabled && cfg.WhatsApp.BaseURL != "" {
		notifier = notify.NewWhatsAppClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.Token, &logger)
	} else {
		notifier = &notify.Noop{Logger: &logger}
	}

	sessions := session.NewStore()

	// The outbound hook closes over the bot pointer; the handler never
	// sends before Start, so the late binding is safe.
	var b *bot.Bot
	send := func(chatID int64, text string) { b.SendText(chatID, text) }
	handler := booking.NewHandler(db, scheduler, notifier, sessions, send, cfg.ReminderLead(), &logger)

	b, err = bot.New(cfg.Telegram.BotToken, handler, sessions, db, cfg.Managers, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HTTP.Enabled {
		httpSrv := api.NewHTTPServer(cfg.HTTP.Address, db, scheduler, &logger)
		go func() {
			if err := httpSrv.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("http api error")
			}
		}()
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, database.BackupOptions{
			Path:          cfg.Backup.Path,
			Interval:      time.Duration(cfg.Backup.IntervalHours) * time.Hour,
			RetentionDays: cfg.Backup.RetentionDays,
		}, &logger)
		go backup.Start(ctx)
	}

	logger.Info().Msg("barbershop bot started")
	b.Start(ctx)
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
