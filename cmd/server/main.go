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

	"workdays/internal/api"
	"workdays/internal/calendar"
	"workdays/internal/config"
	"workdays/internal/holidays"
	"workdays/internal/metrics"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("WORKDAYS_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	calCfg, err := cfg.CalendarConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid calendar configuration")
	}

	store, err := holidays.NewStore(cfg.Holidays.SnapshotPath, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open holiday snapshot store")
	}
	defer store.Close()

	client := holidays.NewClient(cfg.Holidays.URL, cfg.FetchTimeout(), &logger)
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.Redis.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	svc := holidays.NewService(holidays.NewOracle(), client, store, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	initCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout()+5*time.Second)
	err = svc.Init(initCtx, cfg.Holidays.StartupPolicy)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("holiday service initialization failed")
	}
	svc.StartRecovery(ctx, 5*time.Minute, cfg.FetchTimeout())

	if err := svc.StartPeriodicRefresh(ctx, cfg.Holidays.RefreshCron, cfg.FetchTimeout()); err != nil {
		logger.Fatal().Err(err).Msg("start holiday refresh schedule")
	}

	engine := calendar.NewEngine(calCfg, svc.Oracle())

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, store, rdb, svc, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := api.NewServer(cfg.Server.Port, engine, svc, &logger)
	logger.Info().
		Int("port", cfg.Server.Port).
		Str("timezone", cfg.Calendar.Timezone).
		Int("holidays", svc.Oracle().Size()).
		Msg("working days API started")
	if err := srv.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server error")
	}
}

func startHealthServer(ctx context.Context, port int, store *holidays.Store, rdb *redis.Client, svc *holidays.Service, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := store.PingContext(ctxPing); err != nil {
			http.Error(w, "snapshot store not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if svc.Stale() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready (stale holidays)"))
			return
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
