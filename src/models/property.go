package models

import (
	"hbs/src/types"
)

type Property struct {
	ID           uint                 `gorm:"primarykey;uniqueIndex:slugid" json:"id"`
	Name         string               `json:"name,omitempty"`
	About        *string              `json:"about,omitempty"`
	Address      string               `json:"address,omitempty"`
	City         string               `json:"city,omitempty"`
	Country      string               `json:"country,omitempty"`
	OwnerID      uint                 `json:"owner_id,omitempty"`
	ContactEmail string               `json:"email,omitempty"`
	ContactPhone string               `json:"phone,omitempty"`
	Status       types.PropertyStatus `gorm:"default:'draft'" json:"status,omitempty"`
	Slug         string               `gorm:"uniqueIndex:slugid" json:"slug"`
	PhotoKeys    *types.Metadata      `gorm:"type:jsonb" json:"photos,omitempty"`

	Rooms   []Room   `gorm:"foreignKey:property_id" json:"rooms,omitempty"`
	Reviews []Review `gorm:"foreignKey:property_id" json:"reviews,omitempty"`
	Owner   User     `gorm:"foreignKey:owner_id" json:"-"`

	types.Timestamps
}
