package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

const maxDelivered = 256

type Presented struct {
	Handle  domain.SchedulingHandle
	Content domain.NotificationContent
	FiredAt time.Time
}

// Notifier receives every notification the Timer presents.
type Notifier func(Presented)

// Timer schedules notifications on in-process timers. Presented
// notifications stay queryable until evicted by newer ones, canceled, or
// superseded by a new notification for the same task.
type Timer struct {
	mu        sync.Mutex
	pending   map[domain.SchedulingHandle]*time.Timer
	delivered []domain.DeliveredNotification
	notify    Notifier
	now       func() time.Time
	closed    bool
}

func NewTimer(notify Notifier) *Timer {
	if notify == nil {
		notify = func(Presented) {}
	}

	return &Timer{
		pending: make(map[domain.SchedulingHandle]*time.Timer),
		notify:  notify,
		now:     time.Now,
	}
}

func (s *Timer) Schedule(ctx context.Context, content domain.NotificationContent, firesAt time.Time) (domain.SchedulingHandle, error) {
	return s.arm(ctx, content, time.Until(firesAt))
}

func (s *Timer) ScheduleImmediate(ctx context.Context, content domain.NotificationContent) (domain.SchedulingHandle, error) {
	return s.arm(ctx, content, 0)
}

func (s *Timer) arm(ctx context.Context, content domain.NotificationContent, delay time.Duration) (domain.SchedulingHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if delay < 0 {
		delay = 0
	}

	handle := domain.SchedulingHandle(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", domain.ErrUnsupported
	}

	s.dropDelivered(func(d domain.DeliveredNotification) bool {
		return d.TaskID == content.TaskID
	})

	s.pending[handle] = time.AfterFunc(delay, func() {
		s.fire(handle, content)
	})

	slog.Debug("local notification armed",
		"handle", string(handle),
		"task_id", content.TaskID.String(),
		"delay", delay,
	)

	return handle, nil
}

func (s *Timer) fire(handle domain.SchedulingHandle, content domain.NotificationContent) {
	s.mu.Lock()

	if _, ok := s.pending[handle]; !ok {
		s.mu.Unlock()

		return
	}

	delete(s.pending, handle)

	s.delivered = append(s.delivered, domain.DeliveredNotification{Handle: handle, TaskID: content.TaskID})
	if len(s.delivered) > maxDelivered {
		s.delivered = s.delivered[len(s.delivered)-maxDelivered:]
	}

	firedAt := s.now()
	s.mu.Unlock()

	s.notify(Presented{Handle: handle, Content: content, FiredAt: firedAt})
}

// Cancel stops a pending handle and forgets it if it already fired.
func (s *Timer) Cancel(_ context.Context, handle domain.SchedulingHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.pending[handle]; ok {
		t.Stop()
		delete(s.pending, handle)
	}

	s.dropDelivered(func(d domain.DeliveredNotification) bool {
		return d.Handle == handle
	})

	return nil
}

// dropDelivered must be called with mu held.
func (s *Timer) dropDelivered(match func(domain.DeliveredNotification) bool) {
	kept := s.delivered[:0]

	for _, d := range s.delivered {
		if !match(d) {
			kept = append(kept, d)
		}
	}

	s.delivered = kept
}

func (s *Timer) QueryDelivered(context.Context) ([]domain.DeliveredNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.DeliveredNotification, len(s.delivered))
	copy(out, s.delivered)

	return out, nil
}

func (s *Timer) HasPermission(context.Context) (bool, error) {
	return true, nil
}

// Pending reports how many notifications are armed and not yet fired.
func (s *Timer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

// Close stops every armed timer. Later calls to Schedule fail.
func (s *Timer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for handle, t := range s.pending {
		t.Stop()
		delete(s.pending, handle)
	}

	s.closed = true
}
