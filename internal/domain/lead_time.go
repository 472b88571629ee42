package domain

import "time"

// LeadTime is how long before a task's scheduled moment its reminder fires.
const LeadTime = 1 * time.Hour

func NotifyAtFor(scheduledAt time.Time) time.Time {
	return scheduledAt.Add(-LeadTime)
}

// InDueWindow reports whether now lies in the half-open interval [notifyAt, scheduledAt).
func InDueWindow(notifyAt, scheduledAt, now time.Time) bool {
	return !now.Before(notifyAt) && now.Before(scheduledAt)
}
