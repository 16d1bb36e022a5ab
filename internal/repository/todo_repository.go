package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-web/internal/domain"
)

// TodoFields are the user-editable columns of a todo.
type TodoFields struct {
	Title       string
	Description string
	Priority    int
}

// TodoRepository defines the ownership-scoped data operations on todos.
// Every lookup filters by both id and owner; a todo owned by someone else
// is reported as domain.ErrTodoNotFound.
type TodoRepository interface {
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Todo, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) error
	Update(ctx context.Context, id, ownerID uint, fields TodoFields) (*domain.Todo, error)
	Delete(ctx context.Context, id, ownerID uint) error
	ToggleComplete(ctx context.Context, id, ownerID uint) (*domain.Todo, error)
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func owned(id, ownerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND owner_id = ?", id, ownerID)
	}
}

// ListByOwner returns the owner's todos in insertion order.
func (r *gormTodoRepository) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Todo, error) {
	todos := []domain.Todo{}
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos of owner %d: %w", ownerID, err)
	}
	return todos, nil
}

func (r *gormTodoRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*domain.Todo, error) {
	var todo domain.Todo
	if err := r.db.WithContext(ctx).Scopes(owned(id, ownerID)).First(&todo).Error; err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

// Create inserts todo and fills in its generated id and timestamps.
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update overwrites title, description and priority of an owned todo.
// Complete, owner and id are never touched.
func (r *gormTodoRepository) Update(ctx context.Context, id, ownerID uint, fields TodoFields) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(owned(id, ownerID)).First(&todo).Error; err != nil {
			return err
		}
		todo.Title = fields.Title
		todo.Description = fields.Description
		todo.Priority = fields.Priority
		return tx.Model(&todo).Select("Title", "Description", "Priority").Updates(&todo).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

// Delete removes an owned todo in a single statement.
func (r *gormTodoRepository) Delete(ctx context.Context, id, ownerID uint) error {
	result := r.db.WithContext(ctx).Scopes(owned(id, ownerID)).Delete(&domain.Todo{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

// ToggleComplete negates the complete flag in the database, so concurrent
// toggles never read a stale value.
func (r *gormTodoRepository) ToggleComplete(ctx context.Context, id, ownerID uint) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Todo{}).Scopes(owned(id, ownerID)).
			Update("complete", gorm.Expr("NOT complete"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrTodoNotFound
		}
		return tx.Scopes(owned(id, ownerID)).First(&todo).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

// translate maps driver errors onto domain errors.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrTodoNotFound
	case isCheckViolation(err):
		return domain.NewValidationError("priority",
			fmt.Sprintf("priority must be between %d and %d", domain.MinPriority, domain.MaxPriority))
	default:
		return err
	}
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
