package models

import (
	"hbs/src/types"
)

type Review struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	PropertyID uint   `gorm:"index" json:"property_id,omitempty"`
	UserID     uint   `json:"user_id,omitempty"`
	Rating     uint   `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	Status     string `gorm:"default:'published'" json:"status,omitempty"`

	Property Property `json:"-"`
	User     User     `json:"user,omitempty"`

	types.Timestamps
}
