package models

import (
	"hbs/src/types"

	"github.com/google/uuid"
)

// Invoice is issued when an order is confirmed. Card payments carry the
// Stripe checkout session linkage; cash and transfer invoices are settled
// manually by the host.
type Invoice struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	OrderID           uint                `gorm:"index" json:"order_id"`
	Currency          string              `json:"currency,omitempty"`
	Amount            int64               `json:"amount"`
	AmountPaid        int64               `json:"amount_paid"`
	CheckoutSessionId *string             `json:"-"`
	PaymentIntentId   *string             `json:"-"`
	Status            types.InvoiceStatus `gorm:"default:'pending'" json:"status"`
	Metadata          *types.Metadata     `gorm:"type:jsonb" json:"-"`

	Order BookingOrder `gorm:"foreignKey:order_id" json:"-"`

	types.Timestamps
}
