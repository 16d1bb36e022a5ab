package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo-web/internal/config"
	"github.com/Tomlord1122/todo-web/internal/database"
	"github.com/Tomlord1122/todo-web/internal/repository"
	"github.com/Tomlord1122/todo-web/internal/server"
	"github.com/Tomlord1122/todo-web/internal/service"
	"github.com/Tomlord1122/todo-web/internal/session"
	"github.com/Tomlord1122/todo-web/internal/web"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	dbService, err := database.New(cfg.DB, log)
	if err != nil {
		return err
	}
	if err := dbService.Migrate(); err != nil {
		_ = dbService.Close()
		return err
	}

	pages, err := web.New()
	if err != nil {
		_ = dbService.Close()
		return err
	}

	todoRepo := repository.NewGormTodoRepository(dbService.GetDB())
	todoService := service.NewTodoService(todoRepo, log)
	resolver := session.NewJWT(cfg.Session.Secret, cfg.Session.CookieName, log)

	apiServer := server.NewServer(cfg, todoService, dbService, resolver, pages, log)

	done := make(chan bool, 1)
	go gracefulShutdown(ctx, apiServer, dbService, log, done)

	log.Info("starting server", "addr", apiServer.Addr)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = dbService.Close()
		return fmt.Errorf("listen and serve: %w", err)
	}

	<-done
	log.Info("graceful shutdown complete")
	return nil
}

func gracefulShutdown(ctx context.Context, apiServer *http.Server, dbService database.Service, log *slog.Logger, done chan<- bool) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctxTimeout, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	if err := dbService.Close(); err != nil {
		log.Error("close database connection pool", "error", err)
	}

	log.Info("server exiting")
	done <- true
}
