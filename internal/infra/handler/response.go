package handler

import (
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/app"
)

type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SyncUserResponse struct {
	OK          bool `json:"ok"`
	PendingJobs int  `json:"pendingJobs"`
}

func SyncUserResponseFromOutput(output app.SyncUserJobsOutput) SyncUserResponse {
	return SyncUserResponse{
		OK:          true,
		PendingJobs: output.PendingJobs,
	}
}

type DispatchDueResponse struct {
	OK        bool `json:"ok"`
	DueJobs   int  `json:"dueJobs"`
	SentCount int  `json:"sentCount"`
}

func DispatchDueResponseFromOutput(output app.DispatchDueOutput) DispatchDueResponse {
	return DispatchDueResponse{
		OK:        true,
		DueJobs:   output.DueJobs,
		SentCount: output.SentCount,
	}
}

type PushDeviceResponse struct {
	UserID        string    `json:"userId"`
	ExpoPushToken string    `json:"expoPushToken"`
	Platform      string    `json:"platform"`
	DeviceID      string    `json:"deviceId,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type RegisterTokenResponse struct {
	OK     bool               `json:"ok"`
	Device PushDeviceResponse `json:"device"`
}

func RegisterTokenResponseFromOutput(output app.PushDeviceOutput) RegisterTokenResponse {
	return RegisterTokenResponse{
		OK: true,
		Device: PushDeviceResponse{
			UserID:        output.UserID,
			ExpoPushToken: output.ExpoPushToken,
			Platform:      output.Platform,
			DeviceID:      output.DeviceID,
			IsActive:      output.IsActive,
			CreatedAt:     output.CreatedAt,
			UpdatedAt:     output.UpdatedAt,
		},
	}
}
