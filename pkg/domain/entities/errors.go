package entities

import "errors"

// Rejections returned by scheduling operations. A rejected operation leaves
// the order collection untouched.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrMachineNotFound   = errors.New("machine not found")
	ErrOrderLocked       = errors.New("order is locked")
	ErrOrderParked       = errors.New("order is parked")
	ErrLockedConflict    = errors.New("requested slot overlaps a locked order")
	ErrScopeBlocked      = errors.New("compaction blocked by an order outside the window")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidWindow     = errors.New("invalid time window")
	ErrInvalidStart      = errors.New("invalid start hour")
)
