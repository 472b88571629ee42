package app

import "context"

type ReminderJobUseCase interface {
	SyncUserJobs(ctx context.Context, input SyncUserJobsInput) (SyncUserJobsOutput, error)
}
