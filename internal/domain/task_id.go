package domain

import (
	"errors"
	"strings"
)

type TaskID struct {
	value string
}

var ErrInvalidTaskID = errors.New("invalid task ID: must not be empty")

func TaskIDFromString(s string) (TaskID, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return TaskID{}, ErrInvalidTaskID
	}

	return TaskID{value: v}, nil
}

func MustTaskID(s string) TaskID {
	id, err := TaskIDFromString(s)
	if err != nil {
		panic(err)
	}

	return id
}

func (t TaskID) String() string {
	return t.value
}

func (t TaskID) IsZero() bool {
	return t.value == ""
}

func (t TaskID) Equals(other TaskID) bool {
	return t.value == other.value
}
