package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/taskhive/apiserver/types"
)

// TaskRepository defines persistence operations for tasks. All single-task
// operations carry the owner id so the store can enforce ownership scoping.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Task, error)
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	UpdateOwned(ctx context.Context, task types.Task) (types.Task, error)
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error
}

// TaskService encapsulates owner-scoped task use-cases.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// TaskPatch is a partial task update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
}

// List returns every task owned by ownerID, in storage order. The result is
// never nil so callers serialize an empty list as [].
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID) ([]types.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create adds a task for ownerID with status pending.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, title, description string) (types.Task, error) {
	return s.repo.Create(ctx, types.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      types.TaskStatusPending,
	})
}

// Update applies a partial update to a task owned by ownerID. A task owned by
// somebody else fails with store.ErrNotFound, same as a missing one.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, patch TaskPatch) (types.Task, error) {
	task, err := s.findOwned(ctx, taskID, ownerID)
	if err != nil {
		return types.Task{}, err
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}

	return s.repo.UpdateOwned(ctx, task)
}

// Delete removes a task owned by ownerID. Same not-found semantics as Update;
// deletion is not idempotent.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if _, err := s.findOwned(ctx, taskID, ownerID); err != nil {
		return err
	}
	return s.repo.DeleteOwned(ctx, taskID, ownerID)
}

// findOwned is the shared lookup-or-404 step: absent and foreign tasks are
// deliberately indistinguishable.
func (s *TaskService) findOwned(ctx context.Context, taskID, ownerID uuid.UUID) (types.Task, error) {
	return s.repo.GetOwned(ctx, taskID, ownerID)
}
