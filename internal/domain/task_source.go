package domain

import "context"

type TaskSource interface {
	// List returns the user's tasks ordered by ScheduledAt ascending.
	List(ctx context.Context, userID UserID) ([]Task, error)
}
