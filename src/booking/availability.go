package booking

import (
	"hbs/src/models"
	"hbs/src/types"
	"time"

	"gorm.io/gorm"
)

// ActiveStatuses are the reservation states that block a room's calendar.
// Cancelled and checked-out stays release their date range.
var ActiveStatuses = []types.ReservationStatus{
	types.RESERVATION_PENDING,
	types.RESERVATION_CONFIRMED,
	types.RESERVATION_CHECKED_IN,
}

// Overlaps reports whether the half-open stays [aStart, aEnd) and
// [bStart, bEnd) share at least one night. Adjacent stays, where one
// check-out equals the other check-in, do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// IsRoomAvailable reports whether the room has no active reservation
// intersecting [checkIn, checkOut). Callers creating reservations must run
// this inside a transaction that holds a row lock on the room, otherwise two
// concurrent requests can both observe an empty ledger and double-book.
func IsRoomAvailable(tx *gorm.DB, roomID uint, checkIn time.Time, checkOut time.Time) (bool, error) {
	if !checkIn.Before(checkOut) {
		return false, ErrInvalidDateRange
	}
	var count int64
	err := tx.
		Model(&models.Reservation{}).
		Where(&models.Reservation{RoomID: roomID}).
		Where("status IN (?)", ActiveStatuses).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
