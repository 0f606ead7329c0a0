package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ideaspark/internal/auth"
	"ideaspark/internal/config"
	"ideaspark/internal/db"
	httpx "ideaspark/internal/http"
	"ideaspark/internal/jobs"
	"ideaspark/internal/journal"
	"ideaspark/internal/logging"
	"ideaspark/internal/store/memory"
	pgstore "ideaspark/internal/store/postgres"
	redisstore "ideaspark/internal/store/redis"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and reminder worker",
		RunE:  runServe,
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if !cfg.UsesDatabase() {
				return errors.New("DATABASE_URL is not set")
			}
			gdb, err := db.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			return db.AutoMigrateAndIndexes(gdb, log)
		},
	}
}

func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var gdb *gorm.DB
	if cfg.UsesDatabase() {
		gdb, err = db.Connect(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := db.AutoMigrateAndIndexes(gdb, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	store, closeStore, err := openStore(cfg, gdb)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []journal.Option
	var users auth.Users = auth.NewMemoryUsers()
	var worker *jobs.Worker
	if gdb != nil {
		users = &auth.GormUsers{DB: gdb}
		jobsRepo := &jobs.Repo{DB: gdb}
		opts = append(opts, journal.WithHook(&jobs.Reminders{Queue: jobsRepo, Lead: cfg.ReminderLead}))
		worker = &jobs.Worker{
			ID:       "worker-1",
			Queue:    jobsRepo,
			Journals: store,
			Log:      log.Named("worker"),
			Interval: cfg.WorkerPollInterval,
		}
	}

	svc := journal.NewService(store, log.Named("journal"), opts...)
	r := httpx.NewRouter(cfg, httpx.Deps{
		Journals: svc,
		Users:    users,
		JWT:      auth.NewJWT(cfg.JWTSecret),
		Log:      log.Named("http"),
	})

	if worker != nil {
		go worker.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.Config, gdb *gorm.DB) (journal.Store, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.New(), noop, nil
	case config.BackendPostgres:
		if gdb == nil {
			return nil, noop, errors.New("postgres backend needs DATABASE_URL")
		}
		return pgstore.New(gdb), noop, nil
	case config.BackendRedis:
		opt, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := goredis.NewClient(opt)
		return redisstore.New(rdb), func() { _ = rdb.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
