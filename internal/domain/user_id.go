package domain

import (
	"errors"
	"strings"
)

type UserID struct {
	value string
}

var ErrInvalidUserID = errors.New("invalid user ID: must not be empty")

func UserIDFromString(s string) (UserID, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return UserID{}, ErrInvalidUserID
	}

	return UserID{value: v}, nil
}

func (u UserID) String() string {
	return u.value
}

func (u UserID) IsZero() bool {
	return u.value == ""
}

func (u UserID) Equals(other UserID) bool {
	return u.value == other.value
}
