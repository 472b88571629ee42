package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type ReminderJobStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	jobs map[string]*domain.ReminderJob
}

func NewReminderJobStore() *ReminderJobStore {
	return &ReminderJobStore{
		jobs: make(map[string]*domain.ReminderJob),
	}
}

func (s *ReminderJobStore) Save(_ context.Context, job *domain.ReminderJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.Key()] = cloneJob(job)

	return nil
}

func (s *ReminderJobStore) Find(_ context.Context, userID domain.UserID, taskID domain.TaskID) (*domain.ReminderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[domain.JobKey(userID, taskID)]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	return cloneJob(job), nil
}

func (s *ReminderJobStore) ListByUser(_ context.Context, userID domain.UserID) ([]*domain.ReminderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*domain.ReminderJob, 0)

	for _, job := range s.jobs {
		if job.UserID().Equals(userID) {
			jobs = append(jobs, cloneJob(job))
		}
	}

	sortByNotifyAt(jobs)

	return jobs, nil
}

func (s *ReminderJobStore) FindDue(_ context.Context, now time.Time) ([]*domain.ReminderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*domain.ReminderJob, 0)

	for _, job := range s.jobs {
		if job.IsDue(now) {
			jobs = append(jobs, cloneJob(job))
		}
	}

	sortByNotifyAt(jobs)

	return jobs, nil
}

// WithTx serializes fn against other WithTx callers on this store.
func (s *ReminderJobStore) WithTx(_ context.Context, fn func(repo domain.ReminderJobRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return fn(s)
}

func sortByNotifyAt(jobs []*domain.ReminderJob) {
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].NotifyAt().Equal(jobs[j].NotifyAt()) {
			return jobs[i].Key() < jobs[j].Key()
		}

		return jobs[i].NotifyAt().Before(jobs[j].NotifyAt())
	})
}
