package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Tomlord1122/todo-web/internal/domain"
	"github.com/Tomlord1122/todo-web/internal/service"
)

const maxBodyBytes = 1 << 20

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todoService.ListTodos(r.Context(), currentUser(r).ID)
	if err != nil {
		s.apiError(w, err, "Failed to retrieve todos")
		return
	}
	s.respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTodoRequest(w, r)
	if !ok {
		return
	}

	todoResp, err := s.todoService.CreateTodo(r.Context(), currentUser(r).ID, req)
	if err != nil {
		s.apiError(w, err, "Failed to create todo")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/todos/%d", todoResp.ID))
	s.respondWithJSON(w, http.StatusCreated, todoResp)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid todo ID provided")
		return
	}

	todo, err := s.todoService.GetTodo(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.apiError(w, err, "Failed to retrieve todo")
		return
	}
	s.respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid todo ID provided")
		return
	}

	req, ok := s.decodeTodoRequest(w, r)
	if !ok {
		return
	}

	updatedTodo, err := s.todoService.UpdateTodo(r.Context(), id, currentUser(r).ID, req)
	if err != nil {
		s.apiError(w, err, "Failed to update todo")
		return
	}
	s.respondWithJSON(w, http.StatusOK, updatedTodo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid todo ID provided")
		return
	}

	if err := s.todoService.DeleteTodo(r.Context(), id, currentUser(r).ID); err != nil {
		s.apiError(w, err, "Failed to delete todo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) completeTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid todo ID provided")
		return
	}

	todo, err := s.todoService.ToggleComplete(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.apiError(w, err, "Failed to toggle todo")
		return
	}
	s.respondWithJSON(w, http.StatusOK, todo)
}

// decodeTodoRequest writes a 400 response and reports false when the body is
// not a single well-formed todo object.
func (s *Server) decodeTodoRequest(w http.ResponseWriter, r *http.Request) (service.TodoRequest, bool) {
	var req service.TodoRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&req)
	if err == nil && decoder.More() {
		err = errors.New("trailing data after JSON object")
	}
	if err == nil {
		return req, true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		s.respondWithError(w, http.StatusBadRequest, msg)
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.respondWithError(w, http.StatusBadRequest, "Request body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		s.respondWithError(w, http.StatusBadRequest, msg)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		s.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Request body contains unknown field %s", fieldName))
	case errors.Is(err, io.EOF):
		s.respondWithError(w, http.StatusBadRequest, "Request body must not be empty")
	case errors.As(err, &maxBytesError):
		msg := fmt.Sprintf("Request body must not be larger than %d bytes", maxBytesError.Limit)
		s.respondWithError(w, http.StatusRequestEntityTooLarge, msg)
	default:
		s.respondWithError(w, http.StatusBadRequest, "Request body must contain a single JSON object")
	}
	return service.TodoRequest{}, false
}

func (s *Server) apiError(w http.ResponseWriter, err error, failure string) {
	switch domain.OutcomeOf(err) {
	case domain.OutcomeNotFound:
		s.respondWithError(w, http.StatusNotFound, "Todo not found")
	case domain.OutcomeInvalid:
		resp := validationResponse{Error: "Invalid todo"}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			resp.Fields = verr.Fields
		}
		s.respondWithJSON(w, http.StatusUnprocessableEntity, resp)
	case domain.OutcomeUnauthenticated:
		s.respondWithError(w, http.StatusUnauthorized, "Authentication required")
	default:
		s.respondWithError(w, http.StatusInternalServerError, failure)
	}
}
