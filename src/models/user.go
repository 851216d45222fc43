package models

import (
	"hbs/src/types"
	"time"
)

type User struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `json:"name,omitempty"`
	Email         string          `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Role          string          `gorm:"default:'guest'" json:"role,omitempty"`
	UID           string          `json:"uid,omitempty"`
	EmailVerified bool            `json:"email_verified,omitempty"`
	LastActive    *time.Time      `json:"last_active,omitempty"`
	Metadata      *types.Metadata `gorm:"type:jsonb"`

	Orders     []BookingOrder `gorm:"foreignKey:user_id" json:"orders,omitempty"`
	Properties []Property     `gorm:"foreignKey:owner_id" json:"properties,omitempty"`
	Reviews    []Review       `gorm:"foreignKey:user_id" json:"reviews,omitempty"`

	types.Timestamps
}
