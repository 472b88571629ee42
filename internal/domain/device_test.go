package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

func mustUserID(t *testing.T, s string) domain.UserID {
	t.Helper()

	id, err := domain.UserIDFromString(s)
	require.NoError(t, err)

	return id
}

func TestNewPlatformSuccess(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.Platform
	}{
		{input: "ios", expected: domain.PlatformIOS},
		{input: "Android", expected: domain.PlatformAndroid},
		{input: " web ", expected: domain.PlatformWeb},
		{input: "", expected: domain.PlatformUnknown},
		{input: "windows", expected: domain.PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.NewPlatform(tt.input))
		})
	}
}

func TestNewPushDeviceSuccess(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	device, err := domain.NewPushDevice(mustUserID(t, "u1"), " ExponentPushToken[abc] ", domain.PlatformIOS, "dev-1", now)

	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[abc]", device.Token())
	assert.Equal(t, domain.PlatformIOS, device.Platform())
	assert.Equal(t, "dev-1", device.DeviceID())
	assert.True(t, device.IsActive())
	assert.Equal(t, now, device.CreatedAt())
	assert.Equal(t, now, device.UpdatedAt())
}

func TestNewPushDeviceError(t *testing.T) {
	_, err := domain.NewPushDevice(mustUserID(t, "u1"), "  ", domain.PlatformIOS, "", time.Now())

	assert.ErrorIs(t, err, domain.ErrEmptyPushToken)
}

func TestPushDeviceReregisterKeepsCreatedAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	later := created.Add(2 * time.Hour)

	device, err := domain.NewPushDevice(mustUserID(t, "u1"), "tok", domain.PlatformIOS, "dev-1", created)
	require.NoError(t, err)

	device.Deactivate(created.Add(time.Hour))
	assert.False(t, device.IsActive())

	device.Reregister(domain.PlatformAndroid, "dev-2", later)

	assert.True(t, device.IsActive())
	assert.Equal(t, domain.PlatformAndroid, device.Platform())
	assert.Equal(t, "dev-2", device.DeviceID())
	assert.Equal(t, created, device.CreatedAt())
	assert.Equal(t, later, device.UpdatedAt())
}
