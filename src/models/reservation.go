package models

import (
	"hbs/src/types"
	"time"
)

// Reservation holds one room for the half-open stay [CheckIn, CheckOut).
// Rows are never deleted; cancellation flips Status so the ledger keeps
// full history for reporting.
type Reservation struct {
	ID          uint                    `gorm:"primarykey" json:"id"`
	RoomID      uint                    `gorm:"index" json:"room_id,omitempty"`
	OrderID     uint                    `gorm:"index" json:"order_id,omitempty"`
	CheckIn     time.Time               `json:"check_in"`
	CheckOut    time.Time               `json:"check_out"`
	Adults      uint                    `json:"adults"`
	Children    uint                    `json:"children"`
	Subtotal    int64                   `json:"subtotal"`
	Status      types.ReservationStatus `gorm:"default:'pending'" json:"status,omitempty"`
	CheckinCode string                  `json:"-"`

	Room  Room         `json:"room,omitempty"`
	Order BookingOrder `gorm:"foreignKey:order_id" json:"order,omitempty"`

	types.Timestamps
}

// Nights is the number of nights billed for the stay.
func (r *Reservation) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}
