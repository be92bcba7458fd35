package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskhive/apiserver/types"
)

func sampleTasks() []types.Task {
	return []types.Task{
		{Title: "Buy milk", Status: types.TaskStatusPending},
		{Title: "Walk the dog", Status: types.TaskStatusCompleted},
		{Title: "buy bread", Status: types.TaskStatusPending},
	}
}

func TestFilterByStatus(t *testing.T) {
	tasks := sampleTasks()

	assert.Len(t, FilterByStatus(tasks, StatusFilterAll), 3)
	assert.Len(t, FilterByStatus(tasks, ""), 3)
	assert.Len(t, FilterByStatus(tasks, types.TaskStatusPending), 2)
	assert.Len(t, FilterByStatus(tasks, types.TaskStatusCompleted), 1)
}

func TestFilterByTitleIsCaseInsensitive(t *testing.T) {
	tasks := sampleTasks()

	matched := FilterByTitle(tasks, "BUY")
	assert.Len(t, matched, 2)

	assert.Len(t, FilterByTitle(tasks, "dog"), 1)
	assert.Len(t, FilterByTitle(tasks, ""), 3)
	assert.Empty(t, FilterByTitle(tasks, "zzz"))
}

func TestFiltersCompose(t *testing.T) {
	tasks := FilterByTitle(FilterByStatus(sampleTasks(), types.TaskStatusPending), "buy")
	assert.Len(t, tasks, 2)
}
