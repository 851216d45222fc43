package models

import (
	"hbs/src/types"
)

// BookingOrder aggregates one or more room reservations under one customer.
type BookingOrder struct {
	ID             uint              `gorm:"primarykey" json:"id"`
	ReferenceCode  string            `gorm:"uniqueIndex" json:"reference_code,omitempty"`
	UserID         *uint             `json:"user_id,omitempty"`
	GuestName      string            `json:"guest_name,omitempty"`
	GuestEmail     string            `json:"guest_email,omitempty"`
	GuestPhone     string            `json:"guest_phone,omitempty"`
	PaymentMethod  string            `json:"payment_method,omitempty"`
	Subtotal       int64             `json:"subtotal"`
	DiscountAmount int64             `json:"discount_amount"`
	TotalAmount    int64             `json:"total_amount"`
	Currency       string            `gorm:"default:'vnd'" json:"currency,omitempty"`
	Status         types.OrderStatus `gorm:"default:'pending'" json:"status,omitempty"`
	PromotionID    *uint             `json:"promotion_id,omitempty"`
	Metadata       *types.Metadata   `gorm:"type:jsonb" json:"metadata,omitempty"`

	User         *User         `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Promotion    *Promotion    `gorm:"foreignKey:promotion_id" json:"promotion,omitempty"`
	Reservations []Reservation `gorm:"foreignKey:order_id" json:"reservations,omitempty"`
	Invoices     []Invoice     `gorm:"foreignKey:order_id" json:"invoices,omitempty"`

	types.Timestamps
}
