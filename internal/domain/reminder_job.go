package domain

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusSent     JobStatus = "sent"
	JobStatusCanceled JobStatus = "canceled"
)

func NewJobStatus(s string) (JobStatus, error) {
	switch s {
	case string(JobStatusPending), string(JobStatusSent), string(JobStatusCanceled):
		return JobStatus(s), nil
	default:
		return "", fmt.Errorf("invalid job status: %s", s)
	}
}

// JobKey identifies the single job slot of a task: "userId:taskId".
func JobKey(userID UserID, taskID TaskID) string {
	return userID.String() + ":" + taskID.String()
}

type ReminderJob struct {
	userID      UserID
	taskID      TaskID
	title       string
	scheduledAt time.Time
	notifyAt    time.Time
	versionTs   time.Time
	status      JobStatus
	sentAt      *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewPendingJob builds a fresh job for the snapshot. createdAt carries over
// from a previous job occupying the same key, if any.
func NewPendingJob(userID UserID, snapshot TaskSnapshot, createdAt, now time.Time) *ReminderJob {
	return &ReminderJob{
		userID:      userID,
		taskID:      snapshot.TaskID,
		title:       snapshot.Title,
		scheduledAt: snapshot.ScheduledAt,
		notifyAt:    snapshot.NotifyAt,
		versionTs:   snapshot.UpdatedAt,
		status:      JobStatusPending,
		createdAt:   createdAt,
		updatedAt:   now,
	}
}

func ReconstituteReminderJob(
	userID UserID,
	taskID TaskID,
	title string,
	scheduledAt time.Time,
	notifyAt time.Time,
	versionTs time.Time,
	status JobStatus,
	sentAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *ReminderJob {
	return &ReminderJob{
		userID:      userID,
		taskID:      taskID,
		title:       title,
		scheduledAt: scheduledAt,
		notifyAt:    notifyAt,
		versionTs:   versionTs,
		status:      status,
		sentAt:      sentAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (j *ReminderJob) Cancel(now time.Time) error {
	if j.status != JobStatusPending {
		return ErrJobNotPending
	}

	j.status = JobStatusCanceled
	j.updatedAt = now

	return nil
}

func (j *ReminderJob) MarkSent(at time.Time) error {
	if j.status != JobStatusPending {
		return ErrJobNotPending
	}

	sentAt := at
	j.status = JobStatusSent
	j.sentAt = &sentAt
	j.updatedAt = at

	return nil
}

// IsDue reports whether the job is pending and now is inside its due window.
func (j *ReminderJob) IsDue(now time.Time) bool {
	return j.status == JobStatusPending && InDueWindow(j.notifyAt, j.scheduledAt, now)
}

// IsStaleFor reports whether the job must be replaced to reflect the snapshot.
func (j *ReminderJob) IsStaleFor(snapshot TaskSnapshot) bool {
	return !j.versionTs.Equal(snapshot.UpdatedAt) ||
		!j.notifyAt.Equal(snapshot.NotifyAt) ||
		j.status != JobStatusPending
}

// SameVersion reports whether other occupies the same slot with the same task version.
func (j *ReminderJob) SameVersion(other *ReminderJob) bool {
	return j.Key() == other.Key() &&
		j.versionTs.Equal(other.versionTs) &&
		j.notifyAt.Equal(other.notifyAt)
}

func (j *ReminderJob) IsPending() bool {
	return j.status == JobStatusPending
}

func (j *ReminderJob) Key() string {
	return JobKey(j.userID, j.taskID)
}

func (j *ReminderJob) UserID() UserID {
	return j.userID
}

func (j *ReminderJob) TaskID() TaskID {
	return j.taskID
}

func (j *ReminderJob) Title() string {
	return j.title
}

func (j *ReminderJob) ScheduledAt() time.Time {
	return j.scheduledAt
}

func (j *ReminderJob) NotifyAt() time.Time {
	return j.notifyAt
}

func (j *ReminderJob) VersionTs() time.Time {
	return j.versionTs
}

func (j *ReminderJob) Status() JobStatus {
	return j.status
}

func (j *ReminderJob) SentAt() *time.Time {
	return j.sentAt
}

func (j *ReminderJob) CreatedAt() time.Time {
	return j.createdAt
}

func (j *ReminderJob) UpdatedAt() time.Time {
	return j.updatedAt
}
