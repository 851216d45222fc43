package booking

import "errors"

var (
	ErrInvalidDateRange  = errors.New("check-out date must be after check-in date")
	ErrRoomUnavailable   = errors.New("room is unavailable for the requested dates")
	ErrRoomNotBookable   = errors.New("room is not open for booking")
	ErrCapacityExceeded  = errors.New("occupant count exceeds room capacity")
	ErrPromotionNotFound = errors.New("promotion code not found")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
)
