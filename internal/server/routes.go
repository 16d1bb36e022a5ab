package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/todo-web/internal/web"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.log.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.HTTP.RequestTimeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/todos", http.StatusFound)
	})
	r.Get("/health", s.healthHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))

	r.Route("/todos", func(r chi.Router) {
		r.Use(s.requireIdentity(s.redirectToLogin))

		r.Get("/", s.listTodosPage)
		r.Get("/add-todo", s.addTodoPage)
		r.Post("/add-todo", s.createTodoPage)
		r.Get("/edit-todo/{id}", s.editTodoPage)
		r.Post("/edit-todo/{id}", s.updateTodoPage)
		r.Get("/delete-todo/{id}", s.deleteTodoPage)
		r.Post("/delete-todo/{id}", s.deleteTodoPage)
		r.Get("/complete-todo/{id}", s.completeTodoPage)
		r.Post("/complete-todo/{id}", s.completeTodoPage)
	})

	r.Route("/api/todos", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.HTTP.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(s.requireIdentity(s.unauthorizedJSON))

		r.Get("/", s.listTodosHandler)
		r.Post("/", s.createTodoHandler)
		r.Get("/{id}", s.getTodoHandler)
		r.Put("/{id}", s.updateTodoHandler)
		r.Delete("/{id}", s.deleteTodoHandler)
		r.Post("/{id}/complete", s.completeTodoHandler)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStats)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
