package domain

import "context"

//go:generate mockgen -source=push_sender.go -destination=push_sender_mock.go -package=domain

const (
	PushStatusOK    = "ok"
	PushStatusError = "error"

	PushErrorDeviceNotRegistered = "DeviceNotRegistered"
)

type PushMessage struct {
	To       string
	Title    string
	Subtitle string
	Body     string
	Sound    string
	TaskID   TaskID
}

type PushTicket struct {
	Status    string
	Message   string
	ErrorCode string
}

func (t PushTicket) OK() bool {
	return t.Status == PushStatusOK
}

func (t PushTicket) IsDeviceNotRegistered() bool {
	return t.Status == PushStatusError && t.ErrorCode == PushErrorDeviceNotRegistered
}

// PushSender submits one batch to the push transport. The returned tickets
// are parallel to messages.
type PushSender interface {
	Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error)
}
