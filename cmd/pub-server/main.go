package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pub-order-system/internal/config"
	"pub-order-system/internal/connections/database"
	"pub-order-system/internal/connections/rabbitmq"
	"pub-order-system/internal/handlers"
	"pub-order-system/internal/logger"
	"pub-order-system/internal/notify"
	"pub-order-system/internal/realtime"
	"pub-order-system/internal/repository"
	"pub-order-system/internal/service"
)

func main() {
	mode := flag.String("mode", "server", "server | notifier")
	port := flag.Int("port", 0, "http port override (server mode)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load error:", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTPPort = *port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "server":
		lg, err := logger.New("pub-server", cfg.LogLevel)
		if err != nil {
			fmt.Fprintln(os.Stderr, "logger init error:", err)
			os.Exit(1)
		}
		defer lg.Sync()
		if err := runServer(ctx, cfg, lg); err != nil {
			lg.Error("fatal", zap.Error(err))
			os.Exit(1)
		}
	case "notifier":
		lg, err := logger.New("pub-notifier", cfg.LogLevel)
		if err != nil {
			fmt.Fprintln(os.Stderr, "logger init error:", err)
			os.Exit(1)
		}
		defer lg.Sync()
		if err := runNotifier(ctx, cfg, lg); err != nil {
			lg.Error("fatal", zap.Error(err))
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode must be one of: server | notifier")
		os.Exit(2)
	}
}

func runServer(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	lg.Info("postgres_connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name))

	var relay realtime.Relay
	if cfg.Rabbit.Enabled() {
		client, err := rabbitmq.Dial(cfg.Rabbit)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.DeclareTopology(); err != nil {
			return err
		}
		relay = client
		lg.Info("rabbitmq_connected", zap.String("host", cfg.Rabbit.Host))
	} else {
		lg.Info("event_relay_disabled")
	}

	store := repository.NewOrderStore(pool)
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry, store, relay, lg)
	svc := service.NewOrderService(store, broadcaster, lg)
	h := handlers.New(svc, registry, broadcaster, lg, cfg.AdminPassword, pool.Ping)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.HTTPPort),
		Handler: handlers.Router(h),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	lg.Info("service_started", zap.Int("port", cfg.HTTPPort))

	select {
	case <-ctx.Done():
		lg.Info("graceful_shutdown")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func runNotifier(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	if !cfg.Rabbit.Enabled() {
		return errors.New("notifier mode requires RABBIT_HOST")
	}
	client, err := rabbitmq.Dial(cfg.Rabbit)
	if err != nil {
		return err
	}
	defer client.Close()
	return notify.Run(ctx, client, lg)
}
