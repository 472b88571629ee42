package tasksource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type taskJSON struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduledAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsCompleted bool      `json:"isCompleted"`
}

// File reads tasks from a JSON array on disk. Entries with a userId only
// belong to that user; entries without one belong to every user.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) List(ctx context.Context, userID domain.UserID) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Task{}, nil
		}

		return nil, fmt.Errorf("reading tasks file: %w", err)
	}

	var entries []taskJSON
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding tasks file: %w", err)
	}

	tasks := make([]domain.Task, 0, len(entries))

	for i, e := range entries {
		if e.UserID != "" && e.UserID != userID.String() {
			continue
		}

		taskID, err := domain.TaskIDFromString(e.ID)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}

		if e.ScheduledAt.IsZero() {
			return nil, fmt.Errorf("task %s: scheduledAt is required", taskID.String())
		}

		tasks = append(tasks, domain.Task{
			ID:          taskID,
			Title:       e.Title,
			ScheduledAt: e.ScheduledAt.UTC(),
			UpdatedAt:   e.UpdatedAt.UTC(),
			IsCompleted: e.IsCompleted,
		})
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ScheduledAt.Before(tasks[j].ScheduledAt)
	})

	return tasks, nil
}
