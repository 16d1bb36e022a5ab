package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Tomlord1122/todo-web/internal/domain"
	"github.com/Tomlord1122/todo-web/internal/service"
	"github.com/Tomlord1122/todo-web/internal/web"
)

const todosPath = "/todos"

var errBadForm = errors.New("malformed form")

func (s *Server) listTodosPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	todos, err := s.todoService.ListTodos(r.Context(), user.ID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, http.StatusOK, web.Home, web.Page{Title: "Your todos", User: user, Todos: todos})
}

func (s *Server) addTodoPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, web.AddTodo, web.Page{Title: "Add todo", User: currentUser(r)})
}

func (s *Server) createTodoPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	form, req, err := parseTodoForm(r)
	if err == nil {
		_, err = s.todoService.CreateTodo(r.Context(), user.ID, req)
	}
	if err != nil {
		page := web.Page{Title: "Add todo", User: user, Form: form}
		s.formError(w, r, web.AddTodo, page, err)
		return
	}
	http.Redirect(w, r, todosPath, http.StatusFound)
}

func (s *Server) editTodoPage(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		s.notFound(w)
		return
	}

	user := currentUser(r)
	todo, err := s.todoService.GetTodo(r.Context(), id, user.ID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, http.StatusOK, web.EditTodo, web.Page{
		Title:  "Edit todo",
		User:   user,
		TodoID: todo.ID,
		Form:   web.FormFromTodo(todo),
	})
}

func (s *Server) updateTodoPage(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		s.notFound(w)
		return
	}

	user := currentUser(r)
	form, req, err := parseTodoForm(r)
	if err == nil {
		_, err = s.todoService.UpdateTodo(r.Context(), id, user.ID, req)
	}
	if err != nil {
		page := web.Page{Title: "Edit todo", User: user, TodoID: id, Form: form}
		s.formError(w, r, web.EditTodo, page, err)
		return
	}
	http.Redirect(w, r, todosPath, http.StatusFound)
}

func (s *Server) deleteTodoPage(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		s.notFound(w)
		return
	}

	if err := s.todoService.DeleteTodo(r.Context(), id, currentUser(r).ID); err != nil {
		s.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, todosPath, http.StatusFound)
}

func (s *Server) completeTodoPage(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		s.notFound(w)
		return
	}

	if _, err := s.todoService.ToggleComplete(r.Context(), id, currentUser(r).ID); err != nil {
		s.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, todosPath, http.StatusFound)
}

// parseTodoForm returns the submitted values as typed, plus the request built
// from them. A priority that is not a number is reported like any other
// invalid field.
func parseTodoForm(r *http.Request) (web.FormValues, service.TodoRequest, error) {
	if err := r.ParseForm(); err != nil {
		return web.FormValues{}, service.TodoRequest{}, fmt.Errorf("%w: %v", errBadForm, err)
	}

	form := web.FormValues{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    r.PostFormValue("priority"),
	}

	priority, err := strconv.Atoi(strings.TrimSpace(form.Priority))
	if err != nil {
		return form, service.TodoRequest{}, domain.NewValidationError("priority",
			fmt.Sprintf("priority must be a whole number between %d and %d", domain.MinPriority, domain.MaxPriority))
	}

	return form, service.TodoRequest{
		Title:       form.Title,
		Description: form.Description,
		Priority:    priority,
	}, nil
}

// formError shows a rejected form again with its field errors.
func (s *Server) formError(w http.ResponseWriter, r *http.Request, name string, page web.Page, err error) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		s.pageError(w, r, err)
		return
	}
	page.Errors = verr.Fields
	s.render(w, http.StatusUnprocessableEntity, name, page)
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadForm) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch domain.OutcomeOf(err) {
	case domain.OutcomeNotFound:
		s.notFound(w)
	case domain.OutcomeUnauthenticated:
		s.redirectToLogin(w, r)
	case domain.OutcomeInvalid:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Debug("page request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}

// notFound answers 404 and points the browser back at the list.
func (s *Server) notFound(w http.ResponseWriter) {
	w.Header().Set("Location", todosPath)
	http.Error(w, "Todo not found", http.StatusNotFound)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, page web.Page) {
	if err := s.pages.Render(w, status, name, page); err != nil {
		s.log.Error("render page", "page", name, "error", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}
