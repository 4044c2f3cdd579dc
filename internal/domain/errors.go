package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for the failure modes the core distinguishes.
var (
	// ErrStoreUnavailable indicates the persistence medium could not be
	// reached. A publish that hits it aborts before any fan-out.
	ErrStoreUnavailable = errors.New("message store unavailable")

	// ErrRoomResolution indicates a room could not be looked up or created
	// during connection acceptance. The connection is not accepted.
	ErrRoomResolution = errors.New("room could not be resolved")

	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("requested resource not found")
)
