package server_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-web/internal/domain"
	"github.com/Tomlord1122/todo-web/internal/service"
	"github.com/Tomlord1122/todo-web/internal/session"
	"github.com/Tomlord1122/todo-web/internal/testutil"
)

func TestPagesRequireIdentity(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		method, target string
	}{
		{http.MethodGet, "/todos"},
		{http.MethodGet, "/todos/add-todo"},
		{http.MethodPost, "/todos/add-todo"},
		{http.MethodGet, "/todos/edit-todo/1"},
		{http.MethodPost, "/todos/edit-todo/1"},
		{http.MethodGet, "/todos/delete-todo/1"},
		{http.MethodPost, "/todos/delete-todo/1"},
		{http.MethodGet, "/todos/complete-todo/1"},
		{http.MethodPost, "/todos/complete-todo/1"},
	} {
		tc := tc
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			t.Parallel()
			svc := &mockTodoService{}
			h := newHarness(t, svc)

			rec := h.do(t, 0, tc.method, tc.target, formContent, form("Buy milk", "Get 2% milk from store", "3"))
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/auth/", rec.Header().Get("Location"))
			assert.Empty(t, svc.Calls, "the store must not be reached without a session")
		})
	}
}

func TestPagesRejectForgedSession(t *testing.T) {
	t.Parallel()
	svc := &mockTodoService{}
	h := newHarness(t, svc)

	forged, err := session.NewJWT("not-the-secret", "access_token", testutil.DiscardLogger()).
		Issue(session.Identity{ID: 1, Username: "user1"}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: forged})
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/", rec.Header().Get("Location"))
	assert.Empty(t, svc.Calls)
}

func TestTodoPagesFlow(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	rec := h.do(t, 1, http.MethodGet, "/todos", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Nothing to do yet.")
	assert.Contains(t, rec.Body.String(), `<span class="user">user1</span>`)

	rec = h.do(t, 1, http.MethodGet, "/todos/add-todo", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/todos/add-todo"`)

	rec = h.do(t, 1, http.MethodPost, "/todos/add-todo", formContent, form("Buy milk", "Get 2% milk from store", "3"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/todos", rec.Header().Get("Location"))

	rec = h.do(t, 1, http.MethodGet, "/todos", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Buy milk</td>")
	assert.Contains(t, rec.Body.String(), `<a href="/todos/complete-todo/1">Complete</a>`)

	rec = h.do(t, 1, http.MethodGet, "/todos/complete-todo/1", "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/todos", rec.Header().Get("Location"))

	rec = h.do(t, 1, http.MethodGet, "/todos", "", "")
	assert.Contains(t, rec.Body.String(), `<a href="/todos/complete-todo/1">Undo</a>`)

	rec = h.do(t, 1, http.MethodGet, "/todos/edit-todo/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Buy milk"`)
	assert.Contains(t, rec.Body.String(), `action="/todos/edit-todo/1"`)

	rec = h.do(t, 1, http.MethodPost, "/todos/edit-todo/1", formContent, form("Buy oat milk", "Get oat milk from store", "5"))
	require.Equal(t, http.StatusFound, rec.Code)

	rec = h.do(t, 1, http.MethodGet, "/todos", "", "")
	assert.Contains(t, rec.Body.String(), "<td>Buy oat milk</td>")
	assert.Contains(t, rec.Body.String(), "<td>5</td>")
	assert.Contains(t, rec.Body.String(), "Undo", "editing keeps the complete flag")

	rec = h.do(t, 1, http.MethodPost, "/todos/delete-todo/1", formContent, "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/todos", rec.Header().Get("Location"))

	rec = h.do(t, 1, http.MethodGet, "/todos/edit-todo/1", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/todos", rec.Header().Get("Location"))
}

func TestCreateTodoPageRerendersInvalidForm(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		form    string
		wantMsg string
	}{
		"short title": {
			form:    form("ab", "Get 2% milk from store", "3"),
			wantMsg: "title must be at least 3 characters",
		},
		"short description": {
			form:    form("Buy milk", "short", "3"),
			wantMsg: "description must be at least 10 characters",
		},
		"priority out of range": {
			form:    form("Buy milk", "Get 2% milk from store", "9"),
			wantMsg: "priority must be between 0 and 5",
		},
		"priority not a number": {
			form:    form("Buy milk", "Get 2% milk from store", "high"),
			wantMsg: "priority must be a whole number between 0 and 5",
		},
	} {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, nil)

			rec := h.do(t, 1, http.MethodPost, "/todos/add-todo", formContent, tc.form)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), `<p class="error">`+tc.wantMsg+`</p>`)
			assert.Contains(t, rec.Body.String(), `action="/todos/add-todo"`)

			rec = h.do(t, 1, http.MethodGet, "/todos", "", "")
			assert.Contains(t, rec.Body.String(), "Nothing to do yet.", "a rejected form stores nothing")
		})
	}
}

func TestUpdateTodoPageKeepsTypedValues(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	rec := h.do(t, 1, http.MethodPost, "/todos/add-todo", formContent, form("Buy milk", "Get 2% milk from store", "3"))
	require.Equal(t, http.StatusFound, rec.Code)

	rec = h.do(t, 1, http.MethodPost, "/todos/edit-todo/1", formContent, form("Buy cheese", "tiny", "2"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Buy cheese"`)
	assert.Contains(t, rec.Body.String(), `<textarea id="description" name="description">tiny</textarea>`)
	assert.Contains(t, rec.Body.String(), "description must be at least 10 characters")

	rec = h.do(t, 1, http.MethodGet, "/todos", "", "")
	assert.Contains(t, rec.Body.String(), "<td>Buy milk</td>")
}

func TestPagesHideOtherOwnersTodos(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	rec := h.do(t, 1, http.MethodPost, "/todos/add-todo", formContent, form("Buy milk", "Get 2% milk from store", "3"))
	require.Equal(t, http.StatusFound, rec.Code)

	for _, tc := range []struct {
		method, target, body string
	}{
		{http.MethodGet, "/todos/edit-todo/1", ""},
		{http.MethodPost, "/todos/edit-todo/1", form("Mine now", "taken over by user two", "1")},
		{http.MethodGet, "/todos/complete-todo/1", ""},
		{http.MethodPost, "/todos/delete-todo/1", ""},
	} {
		rec = h.do(t, 2, tc.method, tc.target, formContent, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.target)
		assert.Equal(t, "/todos", rec.Header().Get("Location"))
	}

	rec = h.do(t, 2, http.MethodGet, "/todos", "", "")
	assert.Contains(t, rec.Body.String(), "Nothing to do yet.")

	rec = h.do(t, 1, http.MethodGet, "/todos", "", "")
	assert.Contains(t, rec.Body.String(), "<td>Buy milk</td>")
	assert.Contains(t, rec.Body.String(), ">Complete</a>", "a foreign toggle must not flip the flag")
}

func TestPagesMalformedID(t *testing.T) {
	t.Parallel()
	svc := &mockTodoService{}
	h := newHarness(t, svc)

	for _, target := range []string{"/todos/edit-todo/abc", "/todos/delete-todo/0", "/todos/complete-todo/-1"} {
		rec := h.do(t, 1, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "/todos", rec.Header().Get("Location"))
	}
	assert.Empty(t, svc.Calls)
}

func TestCompletePageUsesCallerIdentity(t *testing.T) {
	t.Parallel()
	svc := &mockTodoService{}
	svc.On("ToggleComplete", mock.Anything, uint(7), uint(3)).
		Return(&service.TodoResponse{ID: 7, OwnerID: 3, Complete: true}, nil).Once()
	h := newHarness(t, svc)

	rec := h.do(t, 3, http.MethodPost, "/todos/complete-todo/7", formContent, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestPagesStoreFailure(t *testing.T) {
	t.Parallel()
	svc := &mockTodoService{}
	svc.On("ListTodos", mock.Anything, uint(1)).Return(nil, errors.New("list todos: connection reset"))
	svc.On("DeleteTodo", mock.Anything, uint(4), uint(1)).Return(domain.ErrTodoNotFound)
	h := newHarness(t, svc)

	rec := h.do(t, 1, http.MethodGet, "/todos", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")

	rec = h.do(t, 1, http.MethodGet, "/todos/delete-todo/4", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}
