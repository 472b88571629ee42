package domain

import (
	"time"
)

type RecordState string

const (
	RecordStateUnscheduled RecordState = "unscheduled"
	RecordStateScheduled   RecordState = "scheduled"
	RecordStateDue         RecordState = "due"
	RecordStateSent        RecordState = "sent"
)

// SchedulingHandle is an opaque reference to a locally scheduled alarm.
type SchedulingHandle string

func (h SchedulingHandle) IsZero() bool {
	return h == ""
}

type NotificationRecord struct {
	id        RecordID
	userID    UserID
	taskID    TaskID
	notifyAt  time.Time
	sentAt    *time.Time
	readAt    *time.Time
	handle    SchedulingHandle
	createdAt time.Time
	updatedAt time.Time
}

func NewNotificationRecord(userID UserID, taskID TaskID, notifyAt, now time.Time) *NotificationRecord {
	return &NotificationRecord{
		id:        NewRecordID(),
		userID:    userID,
		taskID:    taskID,
		notifyAt:  notifyAt,
		createdAt: now,
		updatedAt: now,
	}
}

func ReconstituteNotificationRecord(
	id RecordID,
	userID UserID,
	taskID TaskID,
	notifyAt time.Time,
	sentAt *time.Time,
	readAt *time.Time,
	handle SchedulingHandle,
	createdAt time.Time,
	updatedAt time.Time,
) *NotificationRecord {
	// a delivered reminder holds no live handle
	if sentAt != nil {
		handle = ""
	}

	return &NotificationRecord{
		id:        id,
		userID:    userID,
		taskID:    taskID,
		notifyAt:  notifyAt,
		sentAt:    sentAt,
		readAt:    readAt,
		handle:    handle,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// State derives the lifecycle state at the given instant.
func (r *NotificationRecord) State(scheduledAt, now time.Time) RecordState {
	switch {
	case r.sentAt != nil:
		return RecordStateSent
	case InDueWindow(r.notifyAt, scheduledAt, now):
		return RecordStateDue
	case !r.handle.IsZero():
		return RecordStateScheduled
	default:
		return RecordStateUnscheduled
	}
}

// Invalidate moves the record back to Unscheduled for a new notify time.
// The caller is responsible for canceling the previous handle first.
func (r *NotificationRecord) Invalidate(notifyAt, now time.Time) {
	r.notifyAt = notifyAt
	r.sentAt = nil
	r.readAt = nil
	r.handle = ""
	r.updatedAt = now
}

func (r *NotificationRecord) AttachHandle(handle SchedulingHandle, now time.Time) error {
	if handle.IsZero() {
		return ErrEmptyHandle
	}

	if r.sentAt != nil {
		return ErrRecordAlreadySent
	}

	r.handle = handle
	r.updatedAt = now

	return nil
}

func (r *NotificationRecord) ClearHandle(now time.Time) {
	r.handle = ""
	r.updatedAt = now
}

func (r *NotificationRecord) MarkSent(at time.Time) error {
	if r.sentAt != nil {
		return ErrRecordAlreadySent
	}

	sentAt := at
	r.sentAt = &sentAt
	r.handle = ""
	r.updatedAt = at

	return nil
}

func (r *NotificationRecord) MarkRead(at time.Time) {
	if r.readAt != nil {
		return
	}

	readAt := at
	r.readAt = &readAt
	r.updatedAt = at
}

func (r *NotificationRecord) IsSent() bool {
	return r.sentAt != nil
}

func (r *NotificationRecord) IsRead() bool {
	return r.readAt != nil
}

func (r *NotificationRecord) HasHandle() bool {
	return !r.handle.IsZero()
}

func (r *NotificationRecord) ID() RecordID {
	return r.id
}

func (r *NotificationRecord) UserID() UserID {
	return r.userID
}

func (r *NotificationRecord) TaskID() TaskID {
	return r.taskID
}

func (r *NotificationRecord) NotifyAt() time.Time {
	return r.notifyAt
}

func (r *NotificationRecord) SentAt() *time.Time {
	return r.sentAt
}

func (r *NotificationRecord) ReadAt() *time.Time {
	return r.readAt
}

func (r *NotificationRecord) Handle() SchedulingHandle {
	return r.handle
}

func (r *NotificationRecord) CreatedAt() time.Time {
	return r.createdAt
}

func (r *NotificationRecord) UpdatedAt() time.Time {
	return r.updatedAt
}
