package server_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-web/internal/config"
	"github.com/Tomlord1122/todo-web/internal/repository"
	"github.com/Tomlord1122/todo-web/internal/server"
	"github.com/Tomlord1122/todo-web/internal/service"
	"github.com/Tomlord1122/todo-web/internal/session"
	"github.com/Tomlord1122/todo-web/internal/testutil"
	"github.com/Tomlord1122/todo-web/internal/web"
)

const (
	formContent = "application/x-www-form-urlencoded"
	jsonContent = "application/json"
)

type harness struct {
	handler http.Handler
	tokens  *session.JWT
}

func testConfig() config.Config {
	return config.Config{
		LogLevel: "DEBUG",
		HTTP: config.HTTPConfig{
			Port:           8080,
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			IdleTimeout:    time.Second,
			RequestTimeout: 5 * time.Second,
			AllowedOrigins: []string{"http://*"},
		},
		Session: config.SessionConfig{
			Secret:     "test-secret",
			CookieName: "access_token",
			LoginURL:   "/auth/",
			TTL:        time.Minute,
		},
	}
}

// newHarness wires the router against svc. A nil svc uses the real service
// over an in-memory SQLite database.
func newHarness(t *testing.T, svc service.TodoService) *harness {
	t.Helper()

	cfg := testConfig()
	log := testutil.DiscardLogger()
	db := testutil.NewDatabase(t)
	if svc == nil {
		svc = service.NewTodoService(repository.NewGormTodoRepository(db.GetDB()), log)
	}

	pages, err := web.New()
	require.NoError(t, err)

	tokens := session.NewJWT(cfg.Session.Secret, cfg.Session.CookieName, log)
	srv := server.NewServer(cfg, svc, db, tokens, pages, log)
	return &harness{handler: srv.Handler, tokens: tokens}
}

// do sends a request as user; user 0 sends no session.
func (h *harness) do(t *testing.T, user uint, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != 0 {
		token, err := h.tokens.Issue(session.Identity{ID: user, Username: fmt.Sprintf("user%d", user)}, time.Minute)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func form(title, description, priority string) string {
	return url.Values{
		"title":       {title},
		"description": {description},
		"priority":    {priority},
	}.Encode()
}

type mockTodoService struct {
	mock.Mock
}

func (m *mockTodoService) ListTodos(ctx context.Context, ownerID uint) ([]service.TodoResponse, error) {
	args := m.Called(ctx, ownerID)
	todos, _ := args.Get(0).([]service.TodoResponse)
	return todos, args.Error(1)
}

func (m *mockTodoService) CreateTodo(ctx context.Context, ownerID uint, req service.TodoRequest) (*service.TodoResponse, error) {
	args := m.Called(ctx, ownerID, req)
	todo, _ := args.Get(0).(*service.TodoResponse)
	return todo, args.Error(1)
}

func (m *mockTodoService) GetTodo(ctx context.Context, id, ownerID uint) (*service.TodoResponse, error) {
	args := m.Called(ctx, id, ownerID)
	todo, _ := args.Get(0).(*service.TodoResponse)
	return todo, args.Error(1)
}

func (m *mockTodoService) UpdateTodo(ctx context.Context, id, ownerID uint, req service.TodoRequest) (*service.TodoResponse, error) {
	args := m.Called(ctx, id, ownerID, req)
	todo, _ := args.Get(0).(*service.TodoResponse)
	return todo, args.Error(1)
}

func (m *mockTodoService) DeleteTodo(ctx context.Context, id, ownerID uint) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *mockTodoService) ToggleComplete(ctx context.Context, id, ownerID uint) (*service.TodoResponse, error) {
	args := m.Called(ctx, id, ownerID)
	todo, _ := args.Get(0).(*service.TodoResponse)
	return todo, args.Error(1)
}
