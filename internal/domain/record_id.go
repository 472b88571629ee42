package domain

import (
	"github.com/google/uuid"
)

type RecordID struct {
	value uuid.UUID
}

func NewRecordID() RecordID {
	return RecordID{value: uuid.New()}
}

func RecordIDFromString(s string) (RecordID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RecordID{}, ErrInvalidRecordID
	}

	return RecordID{value: id}, nil
}

func (r RecordID) String() string {
	return r.value.String()
}

func (r RecordID) IsZero() bool {
	return r.value == uuid.Nil
}

func (r RecordID) Equals(other RecordID) bool {
	return r.value == other.value
}
