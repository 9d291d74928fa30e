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

	"github.com/gin-gonic/gin"
	"github.com/sensive/internal/config"
	"github.com/sensive/internal/db"
	"github.com/sensive/internal/handler"
	"github.com/sensive/internal/logger"
	"github.com/sensive/internal/router"
	"github.com/sensive/internal/seed"
	"github.com/sensive/internal/store"
	"github.com/spf13/cobra"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sensive",
		Short:        "Sensive blog server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Populate the database with demo authors, posts, comments and likes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd.Context())
			},
		},
		newUserCmd(),
	)
	return root
}

func newUserCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create an author account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := bootstrap()
			if err != nil {
				return err
			}
			user, err := db.EnsureUser(db.DB, username, password)
			if err != nil {
				log.Error("failed to create user", slog.String("error", err.Error()))
				return err
			}
			log.Info("user ready", slog.String("username", user.Username), slog.Uint64("id", uint64(user.ID)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "author username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "author password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func bootstrap() (config.AppConfig, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	level := gormlogger.Warn
	if cfg.Env == "dev" && cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN, level); err != nil {
		log.Error("failed to initialize database", slog.String("error", err.Error()))
		return config.AppConfig{}, nil, err
	}
	if err := db.DB.Use(store.NewQueryMetrics()); err != nil {
		log.Error("failed to register query metrics", slog.String("error", err.Error()))
		return config.AppConfig{}, nil, err
	}
	return cfg, log, nil
}

func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	api := handler.NewAPI(db.DB, cfg.MediaURLPath, log)
	r := router.SetupRouter(cfg, api, log)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", slog.String("address", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func runSeed(ctx context.Context) error {
	_, log, err := bootstrap()
	if err != nil {
		return err
	}
	_, err = seed.Run(ctx, db.DB, log)
	if err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
	}
	return err
}
