package waitlist

import "errors"

// Sentinel errors for the waitlist domain. Repositories wrap them in AppErrors.
var (
	ErrAlreadyJoined      = errors.New("email is already on the waitlist")
	ErrQueuePositionTaken = errors.New("queue position was taken by a concurrent join")
	ErrEntryNotFound      = errors.New("waitlist entry not found")
	ErrUnknownStatus      = errors.New("unknown waitlist status")
	ErrInvalidTransition  = errors.New("status can only move one step forward")
	ErrStatusChanged      = errors.New("status was changed by another request")
	ErrEmptyEmail         = errors.New("email cannot be empty")
)
