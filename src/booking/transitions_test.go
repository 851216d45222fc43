package booking

import (
	"hbs/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Run("Should walk the happy path forward", func(t *testing.T) {
		assert.True(t, CanTransition(types.ORDER_PENDING, types.ORDER_CONFIRMED))
		assert.True(t, CanTransition(types.ORDER_CONFIRMED, types.ORDER_CHECKED_IN))
		assert.True(t, CanTransition(types.ORDER_CHECKED_IN, types.ORDER_CHECKED_OUT))
		assert.True(t, CanTransition(types.ORDER_CHECKED_OUT, types.ORDER_COMPLETED))
	})

	t.Run("Should allow cancellation from pending and confirmed only", func(t *testing.T) {
		assert.True(t, CanTransition(types.ORDER_PENDING, types.ORDER_CANCELED))
		assert.True(t, CanTransition(types.ORDER_CONFIRMED, types.ORDER_CANCELED))
		assert.False(t, CanTransition(types.ORDER_CHECKED_IN, types.ORDER_CANCELED))
		assert.False(t, CanTransition(types.ORDER_CHECKED_OUT, types.ORDER_CANCELED))
		assert.False(t, CanTransition(types.ORDER_COMPLETED, types.ORDER_CANCELED))
	})

	t.Run("Should only expire pending orders", func(t *testing.T) {
		assert.True(t, CanTransition(types.ORDER_PENDING, types.ORDER_EXPIRED))
		assert.False(t, CanTransition(types.ORDER_CONFIRMED, types.ORDER_EXPIRED))
	})

	t.Run("Should reject backward transitions", func(t *testing.T) {
		assert.False(t, CanTransition(types.ORDER_CONFIRMED, types.ORDER_PENDING))
		assert.False(t, CanTransition(types.ORDER_CHECKED_IN, types.ORDER_CONFIRMED))
		assert.False(t, CanTransition(types.ORDER_COMPLETED, types.ORDER_CHECKED_OUT))
	})

	t.Run("Should treat terminal states as dead ends", func(t *testing.T) {
		for _, to := range []types.OrderStatus{
			types.ORDER_PENDING,
			types.ORDER_CONFIRMED,
			types.ORDER_CHECKED_IN,
			types.ORDER_CHECKED_OUT,
			types.ORDER_COMPLETED,
			types.ORDER_EXPIRED,
		} {
			assert.False(t, CanTransition(types.ORDER_CANCELED, to))
			assert.False(t, CanTransition(types.ORDER_COMPLETED, to))
			assert.False(t, CanTransition(types.ORDER_EXPIRED, to))
		}
	})
}
