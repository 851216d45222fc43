package booking

import (
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderTransitions is the forward-only lifecycle. Cancellation is reachable
// from pending and confirmed; expiry only from pending.
var orderTransitions = map[types.OrderStatus][]types.OrderStatus{
	types.ORDER_PENDING:     {types.ORDER_CONFIRMED, types.ORDER_CANCELED, types.ORDER_EXPIRED},
	types.ORDER_CONFIRMED:   {types.ORDER_CHECKED_IN, types.ORDER_CANCELED},
	types.ORDER_CHECKED_IN:  {types.ORDER_CHECKED_OUT},
	types.ORDER_CHECKED_OUT: {types.ORDER_COMPLETED},
}

// reservationStatusFor maps the order's new status onto its reservations.
// Cancelling or expiring an order flips every active reservation to
// cancelled, which releases the date range immediately.
var reservationStatusFor = map[types.OrderStatus]types.ReservationStatus{
	types.ORDER_CONFIRMED:   types.RESERVATION_CONFIRMED,
	types.ORDER_CHECKED_IN:  types.RESERVATION_CHECKED_IN,
	types.ORDER_CHECKED_OUT: types.RESERVATION_CHECKED_OUT,
	types.ORDER_COMPLETED:   types.RESERVATION_COMPLETED,
	types.ORDER_CANCELED:    types.RESERVATION_CANCELED,
	types.ORDER_EXPIRED:     types.RESERVATION_CANCELED,
}

func CanTransition(from types.OrderStatus, to types.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionOrder moves the order to a new status and keeps its reservations
// in step, all in one transaction. The order row is locked so two racing
// transitions serialize; the loser sees the updated status and fails the
// CanTransition check.
func TransitionOrder(orderId uint, to types.OrderStatus) (*models.BookingOrder, error) {
	db := db.GetDb()
	var order models.BookingOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.BookingOrder{ID: orderId}).
			First(&order).
			Error; err != nil {
			return err
		}
		if !CanTransition(order.Status, to) {
			return ErrInvalidTransition
		}
		if err := tx.
			Model(&models.BookingOrder{}).
			Where(&models.BookingOrder{ID: orderId, Status: order.Status}).
			Update("status", to).
			Error; err != nil {
			return err
		}
		if rs, ok := reservationStatusFor[to]; ok {
			if err := tx.
				Model(&models.Reservation{}).
				Where(&models.Reservation{OrderID: orderId}).
				Where("status NOT IN (?)", []types.ReservationStatus{types.RESERVATION_CANCELED}).
				Update("status", rs).
				Error; err != nil {
				return err
			}
		}
		order.Status = to
		return nil
	})
	if err != nil {
		log.Printf("TransitionOrder failed: order=%d to=%s error=%s\n", orderId, to, err.Error())
		return nil, err
	}
	return &order, nil
}
