package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// NotificationRecordStore keeps records in process memory. The agent uses
// the sqlite store instead when a database path is configured.
type NotificationRecordStore struct {
	mu      sync.RWMutex
	records map[string]*domain.NotificationRecord
}

func NewNotificationRecordStore() *NotificationRecordStore {
	return &NotificationRecordStore{
		records: make(map[string]*domain.NotificationRecord),
	}
}

func (s *NotificationRecordStore) ListByUser(_ context.Context, userID domain.UserID) ([]*domain.NotificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*domain.NotificationRecord, 0)

	for _, record := range s.records {
		if record.UserID().Equals(userID) {
			records = append(records, cloneRecord(record))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].NotifyAt().After(records[j].NotifyAt())
	})

	return records, nil
}

func (s *NotificationRecordStore) FindByTaskID(_ context.Context, taskID domain.TaskID) (*domain.NotificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[taskID.String()]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return cloneRecord(record), nil
}

func (s *NotificationRecordStore) Save(_ context.Context, record *domain.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.TaskID().String()] = cloneRecord(record)

	return nil
}

func (s *NotificationRecordStore) DeleteByTaskID(_ context.Context, taskID domain.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, taskID.String())

	return nil
}
