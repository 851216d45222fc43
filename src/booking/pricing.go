package booking

import (
	"hbs/src/models"
	"time"

	"gorm.io/gorm"
)

// Nights counts the billable nights in the half-open stay [checkIn, checkOut).
func Nights(checkIn time.Time, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// NightlyRate resolves the rate for a single night. A covering price rule
// overrides the room's base price; with several covering rules the most
// recently created one wins.
func NightlyRate(room *models.Room, rules []models.PriceRule, night time.Time) int64 {
	var winner *models.PriceRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Covers(night) {
			continue
		}
		if winner == nil || rule.CreatedAt.After(winner.CreatedAt) {
			winner = rule
		}
	}
	if winner != nil {
		return winner.NightlyPrice
	}
	return room.BasePrice
}

// PriceForStay sums the nightly rate over every night of the stay.
func PriceForStay(room *models.Room, rules []models.PriceRule, checkIn time.Time, checkOut time.Time) int64 {
	var total int64
	for night := checkIn; night.Before(checkOut); night = night.AddDate(0, 0, 1) {
		total += NightlyRate(room, rules, night)
	}
	return total
}

// PriceForRoom loads the room and any price rules touching the stay and
// returns the subtotal for [checkIn, checkOut).
func PriceForRoom(tx *gorm.DB, roomID uint, checkIn time.Time, checkOut time.Time) (int64, error) {
	if !checkIn.Before(checkOut) {
		return 0, ErrInvalidDateRange
	}
	var room models.Room
	if err := tx.Where(&models.Room{ID: roomID}).First(&room).Error; err != nil {
		return 0, err
	}
	var rules []models.PriceRule
	if err := tx.
		Where(&models.PriceRule{RoomID: roomID}).
		Where("start_date < ? AND end_date >= ?", checkOut, checkIn).
		Find(&rules).
		Error; err != nil {
		return 0, err
	}
	return PriceForStay(&room, rules, checkIn, checkOut), nil
}
