package types

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses. Tasks start as pending; the owner may toggle the status
// freely in either direction.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// ValidTaskStatus reports whether s is one of the known task statuses.
func ValidTaskStatus(s string) bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Task represents a single to-do item owned by exactly one user.
// Every read and write of a task is scoped to its owner; a task belonging
// to another user is indistinguishable from a task that does not exist.
type Task struct {
	// ID is the unique identifier of the task.
	ID uuid.UUID `json:"id" db:"id"`

	// OwnerID references the user that owns this task.
	OwnerID uuid.UUID `json:"owner_id" db:"owner_id"`

	// Title is the short, required summary of the task.
	Title string `json:"title" db:"title"`

	// Description is an optional longer body.
	Description string `json:"description" db:"description"`

	// Status is either "pending" or "completed".
	Status string `json:"status" db:"status"`

	// CreatedAt is set once when the task is created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the task.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
