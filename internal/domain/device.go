package domain

import (
	"errors"
	"strings"
	"time"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
	PlatformUnknown Platform = "unknown"
)

// NewPlatform normalizes a client-reported platform; anything unrecognized is unknown.
func NewPlatform(s string) Platform {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return p
	default:
		return PlatformUnknown
	}
}

var ErrEmptyPushToken = errors.New("push token cannot be empty")

type PushDevice struct {
	userID    UserID
	token     string
	platform  Platform
	deviceID  string
	createdAt time.Time
	updatedAt time.Time
	active    bool
}

func NewPushDevice(userID UserID, token string, platform Platform, deviceID string, now time.Time) (*PushDevice, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyPushToken
	}

	return &PushDevice{
		userID:    userID,
		token:     token,
		platform:  platform,
		deviceID:  deviceID,
		createdAt: now,
		updatedAt: now,
		active:    true,
	}, nil
}

func ReconstitutePushDevice(
	userID UserID,
	token string,
	platform Platform,
	deviceID string,
	createdAt time.Time,
	updatedAt time.Time,
	active bool,
) *PushDevice {
	return &PushDevice{
		userID:    userID,
		token:     token,
		platform:  platform,
		deviceID:  deviceID,
		createdAt: createdAt,
		updatedAt: updatedAt,
		active:    active,
	}
}

// Reregister refreshes a known token and reactivates it. createdAt is kept.
func (d *PushDevice) Reregister(platform Platform, deviceID string, now time.Time) {
	d.platform = platform
	d.deviceID = deviceID
	d.active = true
	d.updatedAt = now
}

func (d *PushDevice) Deactivate(now time.Time) {
	d.active = false
	d.updatedAt = now
}

func (d *PushDevice) UserID() UserID {
	return d.userID
}

func (d *PushDevice) Token() string {
	return d.token
}

func (d *PushDevice) Platform() Platform {
	return d.platform
}

func (d *PushDevice) DeviceID() string {
	return d.deviceID
}

func (d *PushDevice) CreatedAt() time.Time {
	return d.createdAt
}

func (d *PushDevice) UpdatedAt() time.Time {
	return d.updatedAt
}

func (d *PushDevice) IsActive() bool {
	return d.active
}
