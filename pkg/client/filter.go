package client

import (
	"strings"

	"github.com/taskhive/apiserver/types"
)

// StatusFilterAll selects every task regardless of status.
const StatusFilterAll = "all"

// FilterByStatus returns the tasks matching status ("all", "pending", or
// "completed"). Purely client-side and non-persisted: the server list is the
// source of truth and is filtered in memory per render.
func FilterByStatus(tasks []types.Task, status string) []types.Task {
	if status == "" || status == StatusFilterAll {
		return tasks
	}
	filtered := make([]types.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == status {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

// FilterByTitle returns the tasks whose title contains query,
// case-insensitively. An empty query matches everything.
func FilterByTitle(tasks []types.Task, query string) []types.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return tasks
	}
	filtered := make([]types.Task, 0, len(tasks))
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), query) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}
