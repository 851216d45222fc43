package models

import (
	"hbs/src/types"
	"time"
)

// PriceRule overrides a room's nightly rate for the inclusive date range
// [StartDate, EndDate]. When two rules cover the same night the most
// recently created one wins.
type PriceRule struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	RoomID       uint      `gorm:"index" json:"room_id,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	NightlyPrice int64     `json:"nightly_price"`
	Label        string    `json:"label,omitempty"`

	Room Room `json:"-"`

	types.Timestamps
}

// Covers reports whether the rule applies to the given night.
func (p *PriceRule) Covers(night time.Time) bool {
	return !night.Before(p.StartDate) && !night.After(p.EndDate)
}
