package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Tomlord1122/todo-web/internal/domain"
	"github.com/Tomlord1122/todo-web/internal/repository"
)

// TodoRequest carries the user-editable fields of a todo, for both create and edit.
type TodoRequest struct {
	Title       string `json:"title" validate:"min=3"`
	Description string `json:"description" validate:"min=10"`
	Priority    int    `json:"priority" validate:"min=0,max=5"`
}

// TodoResponse is the standard representation of a Todo returned by the service.
type TodoResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Complete    bool   `json:"complete"`
	OwnerID     uint   `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TodoService defines the operations for managing a user's todos.
// Every operation is scoped to ownerID; todos of other owners behave as if
// they did not exist.
type TodoService interface {
	// ListTodos returns the owner's todos in creation order.
	ListTodos(ctx context.Context, ownerID uint) ([]TodoResponse, error)

	// CreateTodo validates req and stores a new, incomplete todo.
	CreateTodo(ctx context.Context, ownerID uint, req TodoRequest) (*TodoResponse, error)

	// GetTodo returns domain.ErrTodoNotFound when the todo is missing or not owned.
	GetTodo(ctx context.Context, id, ownerID uint) (*TodoResponse, error)

	// UpdateTodo overwrites title, description and priority.
	UpdateTodo(ctx context.Context, id, ownerID uint, req TodoRequest) (*TodoResponse, error)

	DeleteTodo(ctx context.Context, id, ownerID uint) error

	// ToggleComplete flips the complete flag.
	ToggleComplete(ctx context.Context, id, ownerID uint) (*TodoResponse, error)
}

type todoService struct {
	repo     repository.TodoRepository
	validate *validator.Validate
	log      *slog.Logger
}

// NewTodoService creates a new instance of todoService.
func NewTodoService(repo repository.TodoRepository, log *slog.Logger) TodoService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &todoService{
		repo:     repo,
		validate: validate,
		log:      log,
	}
}

func (s *todoService) ListTodos(ctx context.Context, ownerID uint) ([]TodoResponse, error) {
	todos, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.fail("list todos", err, "owner_id", ownerID)
	}

	responses := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		responses = append(responses, toResponse(&todo))
	}
	return responses, nil
}

func (s *todoService) CreateTodo(ctx context.Context, ownerID uint, req TodoRequest) (*TodoResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Complete:    false,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, s.fail("create todo", err, "owner_id", ownerID)
	}

	s.log.Debug("todo created", "id", todo.ID, "owner_id", ownerID)
	response := toResponse(todo)
	return &response, nil
}

func (s *todoService) GetTodo(ctx context.Context, id, ownerID uint) (*TodoResponse, error) {
	todo, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, s.fail(fmt.Sprintf("get todo %d", id), err, "owner_id", ownerID)
	}
	response := toResponse(todo)
	return &response, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, id, ownerID uint, req TodoRequest) (*TodoResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	todo, err := s.repo.Update(ctx, id, ownerID, repository.TodoFields{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return nil, s.fail(fmt.Sprintf("update todo %d", id), err, "owner_id", ownerID)
	}

	s.log.Debug("todo updated", "id", id, "owner_id", ownerID)
	response := toResponse(todo)
	return &response, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id, ownerID uint) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return s.fail(fmt.Sprintf("delete todo %d", id), err, "owner_id", ownerID)
	}
	s.log.Debug("todo deleted", "id", id, "owner_id", ownerID)
	return nil
}

func (s *todoService) ToggleComplete(ctx context.Context, id, ownerID uint) (*TodoResponse, error) {
	todo, err := s.repo.ToggleComplete(ctx, id, ownerID)
	if err != nil {
		return nil, s.fail(fmt.Sprintf("toggle todo %d", id), err, "owner_id", ownerID)
	}
	s.log.Debug("todo toggled", "id", id, "owner_id", ownerID, "complete", todo.Complete)
	response := toResponse(todo)
	return &response, nil
}

// fail wraps err with op. Errors other than not-found and validation are logged here,
// once, so callers only need to classify them.
func (s *todoService) fail(op string, err error, args ...any) error {
	if domain.OutcomeOf(err) == domain.OutcomeFailure {
		s.log.Error(op+" failed", append(args, "error", err)...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *todoService) validateRequest(req TodoRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate todo: %w", err)
	}

	verr := &domain.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fe.Field()] = fieldMessage(fe)
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "priority":
		return fmt.Sprintf("priority must be between %d and %d", domain.MinPriority, domain.MaxPriority)
	default:
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	}
}

func toResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    todo.Priority,
		Complete:    todo.Complete,
		OwnerID:     todo.OwnerID,
		CreatedAt:   todo.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   todo.UpdatedAt.Format(time.RFC3339),
	}
}
