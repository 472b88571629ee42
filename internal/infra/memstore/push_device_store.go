package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type PushDeviceStore struct {
	mu      sync.RWMutex
	devices map[string]*domain.PushDevice
}

func NewPushDeviceStore() *PushDeviceStore {
	return &PushDeviceStore{
		devices: make(map[string]*domain.PushDevice),
	}
}

func deviceKey(userID domain.UserID, token string) string {
	return userID.String() + ":" + token
}

func (s *PushDeviceStore) Upsert(_ context.Context, device *domain.PushDevice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := deviceKey(device.UserID(), device.Token())

	stored := cloneDevice(device)
	if existing, ok := s.devices[key]; ok {
		stored = domain.ReconstitutePushDevice(
			device.UserID(),
			device.Token(),
			device.Platform(),
			device.DeviceID(),
			existing.CreatedAt(),
			device.UpdatedAt(),
			device.IsActive(),
		)
	}

	s.devices[key] = stored

	return nil
}

func (s *PushDeviceStore) FindByUserAndToken(_ context.Context, userID domain.UserID, token string) (*domain.PushDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	device, ok := s.devices[deviceKey(userID, token)]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}

	return cloneDevice(device), nil
}

func (s *PushDeviceStore) ListActiveByUser(_ context.Context, userID domain.UserID) ([]*domain.PushDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make([]*domain.PushDevice, 0)

	for _, device := range s.devices {
		if device.IsActive() && device.UserID().Equals(userID) {
			devices = append(devices, cloneDevice(device))
		}
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Token() < devices[j].Token()
	})

	return devices, nil
}

func (s *PushDeviceStore) DeactivateToken(_ context.Context, token string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64

	for _, device := range s.devices {
		if device.Token() != token || !device.IsActive() {
			continue
		}

		device.Deactivate(now)
		affected++
	}

	return affected, nil
}
