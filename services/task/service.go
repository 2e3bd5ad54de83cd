package task

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"taskmate/models"
	"taskmate/services/session"
)

// TaskService defines the client-side task operations.
type TaskService interface {
	PostTask(ctx context.Context, t models.Task) (*models.Task, error)
	ListTasks(ctx context.Context, f Filter) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CancelTask(ctx context.Context, id string) error
	CompleteTask(ctx context.Context, id string) error
	PostReview(ctx context.Context, r models.Review) error
}

// Sort orders accepted by Filter.
const (
	SortNewest     = "newest"
	SortBudgetAsc  = "budget_asc"
	SortBudgetDesc = "budget_desc"
)

// Filter narrows and orders a fetched task list in memory.
type Filter struct {
	Status    string
	Query     string
	MinBudget float64
	MaxBudget float64
	SortBy    string
}

// DefaultTaskService is the production implementation, backed by the
// marketplace API through the session client.
type DefaultTaskService struct {
	API *session.Client
}

func (s *DefaultTaskService) PostTask(ctx context.Context, t models.Task) (*models.Task, error) {
	if t.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodPost,
		Path:   "/api/tasks",
		Body:   t,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post task: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("task rejected with status %d", resp.Status)
	}
	var created models.Task
	if err := resp.Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListTasks fetches the task feed and applies the filter locally. The feed
// is small enough that filtering and sorting in memory keeps the API surface
// simple.
func (s *DefaultTaskService) ListTasks(ctx context.Context, f Filter) ([]models.Task, error) {
	query := url.Values{}
	if f.Status != "" {
		query.Set("status", f.Status)
	}
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodGet,
		Path:   "/api/tasks",
		Query:  query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("task list rejected with status %d", resp.Status)
	}
	var tasks []models.Task
	if err := resp.Decode(&tasks); err != nil {
		return nil, err
	}
	return ApplyFilter(tasks, f), nil
}

func (s *DefaultTaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodGet,
		Path:   "/api/tasks/" + id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("task fetch rejected with status %d", resp.Status)
	}
	var t models.Task
	if err := resp.Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *DefaultTaskService) CancelTask(ctx context.Context, id string) error {
	return s.transition(ctx, id, "cancel")
}

func (s *DefaultTaskService) CompleteTask(ctx context.Context, id string) error {
	return s.transition(ctx, id, "complete")
}

func (s *DefaultTaskService) transition(ctx context.Context, id, action string) error {
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/tasks/%s/%s", id, action),
	})
	if err != nil {
		return fmt.Errorf("failed to %s task: %w", action, err)
	}
	if !resp.OK() {
		return fmt.Errorf("task %s rejected with status %d", action, resp.Status)
	}
	return nil
}

func (s *DefaultTaskService) PostReview(ctx context.Context, r models.Review) error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/tasks/%s/reviews", r.TaskID),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("failed to post review: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("review rejected with status %d", resp.Status)
	}
	return nil
}

// ApplyFilter narrows and orders tasks in memory.
func ApplyFilter(tasks []models.Task, f Filter) []models.Task {
	filtered := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.MinBudget > 0 && t.Budget < f.MinBudget {
			continue
		}
		if f.MaxBudget > 0 && t.Budget > f.MaxBudget {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			if !strings.Contains(strings.ToLower(t.Title), q) &&
				!strings.Contains(strings.ToLower(t.Description), q) {
				continue
			}
		}
		filtered = append(filtered, t)
	}

	switch f.SortBy {
	case SortBudgetAsc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Budget < filtered[j].Budget })
	case SortBudgetDesc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Budget > filtered[j].Budget })
	default:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	}
	return filtered
}

// CompletionRate returns the percentage of a tasker's assigned tasks that
// reached completion. Cancelled tasks count against the rate; open tasks do
// not count at all.
func CompletionRate(tasks []models.Task) float64 {
	var completed, finished int
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusCompleted:
			completed++
			finished++
		case models.TaskStatusCancelled:
			finished++
		}
	}
	if finished == 0 {
		return 0
	}
	return float64(completed) / float64(finished) * 100
}

// SplitByRole partitions task IDs by the viewing user's role, feeding the
// per-tab badge aggregation.
func SplitByRole(tasks []models.Task, userID string) (requester, tasker []string) {
	for _, t := range tasks {
		if t.RequesterID == userID {
			requester = append(requester, t.ID)
		}
		if t.TaskerID != "" && t.TaskerID == userID {
			tasker = append(tasker, t.ID)
		}
	}
	return requester, tasker
}
