package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("notification record not found")
	ErrRecordAlreadySent = errors.New("notification record already sent")
	ErrInvalidRecordID   = errors.New("invalid notification record ID")
	ErrEmptyHandle       = errors.New("scheduling handle cannot be empty")

	ErrJobNotFound   = errors.New("reminder job not found")
	ErrJobNotPending = errors.New("reminder job is not pending")

	ErrDeviceNotFound = errors.New("push device not found")

	ErrUnsupported = errors.New("local notifications are not supported")
)
