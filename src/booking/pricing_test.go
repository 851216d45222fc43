package booking

import (
	"hbs/src/models"
	"hbs/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNights(t *testing.T) {
	assert.Equal(t, 3, Nights(date(2025, 12, 1), date(2025, 12, 4)))
	assert.Equal(t, 1, Nights(date(2025, 12, 1), date(2025, 12, 2)))
}

func TestPriceForStay(t *testing.T) {
	room := models.Room{ID: 1, BasePrice: 1_000_000}

	t.Run("Should equal base price times nights without rules", func(t *testing.T) {
		total := PriceForStay(&room, nil, date(2025, 12, 1), date(2025, 12, 4))
		assert.Equal(t, int64(3_000_000), total)
	})

	t.Run("Should apply a covering price rule per night", func(t *testing.T) {
		rules := []models.PriceRule{
			{
				ID:           1,
				RoomID:       1,
				StartDate:    date(2025, 12, 2),
				EndDate:      date(2025, 12, 2),
				NightlyPrice: 1_500_000,
			},
		}
		total := PriceForStay(&room, rules, date(2025, 12, 1), date(2025, 12, 4))
		assert.Equal(t, int64(3_500_000), total)
	})

	t.Run("Should prefer the most recently created rule", func(t *testing.T) {
		older := models.PriceRule{
			ID:           1,
			RoomID:       1,
			StartDate:    date(2025, 12, 1),
			EndDate:      date(2025, 12, 31),
			NightlyPrice: 1_200_000,
		}
		older.CreatedAt = time.Now().Add(-time.Hour)
		newer := models.PriceRule{
			ID:           2,
			RoomID:       1,
			StartDate:    date(2025, 12, 1),
			EndDate:      date(2025, 12, 31),
			NightlyPrice: 900_000,
		}
		newer.CreatedAt = time.Now()
		total := PriceForStay(&room, []models.PriceRule{older, newer}, date(2025, 12, 1), date(2025, 12, 2))
		assert.Equal(t, int64(900_000), total)
	})
}

func TestPromotionDiscount(t *testing.T) {
	t.Run("Should cap a percentage discount at the maximum", func(t *testing.T) {
		promo := models.Promotion{
			Code:              "SAVE10",
			Type:              types.PROMOTION_PERCENTAGE,
			Percent:           10,
			MaxDiscountAmount: 250_000,
		}
		subtotal := int64(3_000_000)
		discount := promo.Discount(subtotal)
		assert.Equal(t, int64(250_000), discount)
		assert.Equal(t, int64(2_750_000), subtotal-discount)
	})

	t.Run("Should not cap a percentage discount below the maximum", func(t *testing.T) {
		promo := models.Promotion{
			Code:              "SAVE10",
			Type:              types.PROMOTION_PERCENTAGE,
			Percent:           10,
			MaxDiscountAmount: 500_000,
		}
		assert.Equal(t, int64(300_000), promo.Discount(3_000_000))
	})

	t.Run("Should cap a fixed discount at the subtotal", func(t *testing.T) {
		promo := models.Promotion{
			Code:        "FLAT",
			Type:        types.PROMOTION_FIXED,
			FixedAmount: 5_000_000,
		}
		assert.Equal(t, int64(3_000_000), promo.Discount(3_000_000))
	})
}
