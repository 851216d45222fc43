package models

import (
	"hbs/src/types"
)

// Room is the bookable inventory unit. BasePrice is the nightly rate in
// minor currency units, overridable per date by PriceRule.
type Room struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	PropertyID  uint             `json:"property_id,omitempty"`
	Name        string           `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	BasePrice   int64            `json:"base_price"`
	Currency    string           `gorm:"default:'vnd'" json:"currency,omitempty"`
	MaxAdults   uint             `json:"max_adults"`
	MaxChildren uint             `json:"max_children"`
	Status      types.RoomStatus `gorm:"default:'available'" json:"status,omitempty"`
	PhotoKeys   *types.Metadata  `gorm:"type:jsonb" json:"photos,omitempty"`

	Property     Property      `json:"property,omitempty"`
	Reservations []Reservation `gorm:"foreignKey:room_id" json:"reservations,omitempty"`
	PriceRules   []PriceRule   `gorm:"foreignKey:room_id" json:"price_rules,omitempty"`

	types.Timestamps
}
