package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Tomlord1122/todo-web/internal/config"
	"github.com/Tomlord1122/todo-web/internal/database"
	"github.com/Tomlord1122/todo-web/internal/service"
	"github.com/Tomlord1122/todo-web/internal/session"
	"github.com/Tomlord1122/todo-web/internal/web"
)

type Server struct {
	cfg         config.Config
	todoService service.TodoService
	db          database.Service
	resolver    session.Resolver
	pages       *web.Renderer
	log         *slog.Logger
}

func NewServer(
	cfg config.Config,
	todoService service.TodoService,
	dbService database.Service,
	resolver session.Resolver,
	pages *web.Renderer,
	log *slog.Logger,
) *http.Server {
	appServer := &Server{
		cfg:         cfg,
		todoService: todoService,
		db:          dbService,
		resolver:    resolver,
		pages:       pages,
		log:         log,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return server
}
