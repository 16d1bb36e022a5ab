package domain

import "time"

// Todo is a single task owned by exactly one user.
type Todo struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Priority    int       `gorm:"not null;check:chk_todos_priority,priority >= 0 AND priority <= 5"`
	Complete    bool      `gorm:"not null;default:false"`
	OwnerID     uint      `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Priority bounds, inclusive.
const (
	MinPriority = 0
	MaxPriority = 5
)
