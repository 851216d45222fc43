package scopes

import "gorm.io/gorm"

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithIDs(ids ...uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", ids)
	}
}

func WithPendingStatus(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", "pending")
}

// WithActiveStay narrows reservations to the statuses that block a room's
// calendar. Cancelled and checked-out stays release their range.
func WithActiveStay(db *gorm.DB) *gorm.DB {
	return db.Where("status IN (?)", []string{"pending", "confirmed", "checked_in"})
}
