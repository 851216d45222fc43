package models

import (
	"errors"
	"hbs/src/types"
	"time"
)

var (
	ErrPromotionInactive    = errors.New("promotion is not active")
	ErrPromotionExhausted   = errors.New("promotion usage limit reached")
	ErrPromotionMinPurchase = errors.New("order subtotal is below the promotion minimum")
)

type Promotion struct {
	ID                uint                `gorm:"primarykey" json:"id"`
	Code              string              `gorm:"uniqueIndex" json:"code"`
	Name              string              `json:"name,omitempty"`
	Type              types.PromotionType `json:"type"`
	Percent           float64             `json:"percent,omitempty"`
	FixedAmount       int64               `json:"fixed_amount,omitempty"`
	MinPurchaseAmount int64               `json:"min_purchase_amount,omitempty"`
	MaxDiscountAmount int64               `json:"max_discount_amount,omitempty"`
	UsageLimit        uint                `json:"usage_limit,omitempty"`
	UsageCount        uint                `gorm:"default:0" json:"usage_count"`
	StartDate         time.Time           `json:"start_date"`
	EndDate           time.Time           `json:"end_date"`

	types.Timestamps
}

// UsableAt validates the promotion against the clock, its usage limit and
// the order subtotal. A zero UsageLimit means unlimited.
func (p *Promotion) UsableAt(now time.Time, subtotal int64) error {
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return ErrPromotionInactive
	}
	if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
		return ErrPromotionExhausted
	}
	if subtotal < p.MinPurchaseAmount {
		return ErrPromotionMinPurchase
	}
	return nil
}

// Discount computes the amount to subtract from subtotal. Percentage
// discounts are capped at MaxDiscountAmount when set; fixed discounts are
// capped at the subtotal so the final amount is never negative.
func (p *Promotion) Discount(subtotal int64) int64 {
	var discount int64
	switch p.Type {
	case types.PROMOTION_PERCENTAGE:
		discount = int64(p.Percent * float64(subtotal) / 100)
		if p.MaxDiscountAmount > 0 && discount > p.MaxDiscountAmount {
			discount = p.MaxDiscountAmount
		}
	case types.PROMOTION_FIXED:
		discount = p.FixedAmount
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
