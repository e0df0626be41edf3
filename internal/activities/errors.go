package activities

import "errors"

var (
	ErrActivityNotFound    = errors.New("Activity not found")
	ErrParticipantNotFound = errors.New("Participant not found in this activity")
	ErrAlreadySignedUp     = errors.New("Student is already signed up for this activity")
	ErrActivityFull        = errors.New("Activity is full")
)
