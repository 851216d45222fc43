package booking

import (
	"errors"
	"fmt"
	"hbs/src/config"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParseStayDate parses a date from a request body. Stay dates carry no time
// component; check-out is exclusive.
func ParseStayDate(s string) (time.Time, error) {
	return time.Parse(config.DATE_PARSE_FORMAT, s)
}

func NewReferenceCode() string {
	return fmt.Sprintf("HB-%s", strings.ToUpper(strings.Split(uuid.NewString(), "-")[0]))
}

type stay struct {
	item     types.OrderItem
	checkIn  time.Time
	checkOut time.Time
}

// CreateOrder books every requested room slot or none of them. The whole
// check-and-insert runs in one transaction holding FOR UPDATE locks on the
// requested rooms, taken in ascending ID order so two concurrent orders for
// the same rooms serialize instead of deadlocking. Exactly one of two fully
// overlapping concurrent requests can succeed.
func CreateOrder(userID *uint, body *types.CreateOrderRequestBody) (*models.BookingOrder, error) {
	stays := make([]stay, 0, len(body.Items))
	roomIDSet := map[uint]bool{}
	for _, item := range body.Items {
		checkIn, err := ParseStayDate(item.CheckIn)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		checkOut, err := ParseStayDate(item.CheckOut)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		if !checkIn.Before(checkOut) {
			return nil, ErrInvalidDateRange
		}
		stays = append(stays, stay{item: item, checkIn: checkIn, checkOut: checkOut})
		roomIDSet[item.RoomID] = true
	}
	// Stays inside the same order never reach the ledger check against each
	// other, so two conflicting items for one room have to be caught here.
	for i := range stays {
		for j := i + 1; j < len(stays); j++ {
			if stays[i].item.RoomID != stays[j].item.RoomID {
				continue
			}
			if Overlaps(stays[i].checkIn, stays[i].checkOut, stays[j].checkIn, stays[j].checkOut) {
				return nil, ErrRoomUnavailable
			}
		}
	}
	roomIDs := make([]uint, 0, len(roomIDSet))
	for id := range roomIDSet {
		roomIDs = append(roomIDs, id)
	}
	sort.Slice(roomIDs, func(i, j int) bool { return roomIDs[i] < roomIDs[j] })

	db := db.GetDb()
	var order models.BookingOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		var rooms []models.Room
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN (?)", roomIDs).
			Order("id ASC").
			Find(&rooms).
			Error; err != nil {
			return err
		}
		if len(rooms) != len(roomIDs) {
			return gorm.ErrRecordNotFound
		}
		roomsByID := map[uint]*models.Room{}
		for i := range rooms {
			roomsByID[rooms[i].ID] = &rooms[i]
		}

		var subtotal int64
		reservations := make([]models.Reservation, 0, len(stays))
		for _, s := range stays {
			room := roomsByID[s.item.RoomID]
			if room.Status != types.ROOM_AVAILABLE {
				return ErrRoomNotBookable
			}
			if s.item.Adults > room.MaxAdults || s.item.Children > room.MaxChildren {
				return ErrCapacityExceeded
			}
			ok, err := IsRoomAvailable(tx, s.item.RoomID, s.checkIn, s.checkOut)
			if err != nil {
				return err
			}
			if !ok {
				return ErrRoomUnavailable
			}
			amount, err := PriceForRoom(tx, s.item.RoomID, s.checkIn, s.checkOut)
			if err != nil {
				return err
			}
			subtotal += amount
			reservations = append(reservations, models.Reservation{
				RoomID:      s.item.RoomID,
				CheckIn:     s.checkIn,
				CheckOut:    s.checkOut,
				Adults:      s.item.Adults,
				Children:    s.item.Children,
				Subtotal:    amount,
				Status:      types.RESERVATION_PENDING,
				CheckinCode: uuid.NewString(),
			})
		}

		var discount int64
		var promotionID *uint
		if body.PromotionCode != "" {
			var promo models.Promotion
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where(&models.Promotion{Code: body.PromotionCode}).
				First(&promo).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPromotionNotFound
				}
				return err
			}
			if err := promo.UsableAt(time.Now(), subtotal); err != nil {
				return err
			}
			discount = promo.Discount(subtotal)
			if err := tx.
				Model(&promo).
				Update("usage_count", gorm.Expr("usage_count + 1")).
				Error; err != nil {
				return err
			}
			promotionID = &promo.ID
		}

		order = models.BookingOrder{
			ReferenceCode:  NewReferenceCode(),
			UserID:         userID,
			GuestName:      body.GuestName,
			GuestEmail:     body.GuestEmail,
			GuestPhone:     body.GuestPhone,
			PaymentMethod:  body.PaymentMethod,
			Subtotal:       subtotal,
			DiscountAmount: discount,
			TotalAmount:    subtotal - discount,
			Status:         types.ORDER_PENDING,
			PromotionID:    promotionID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range reservations {
			reservations[i].OrderID = order.ID
		}
		if err := tx.Create(&reservations).Error; err != nil {
			return err
		}
		order.Reservations = reservations
		return nil
	})
	if err != nil {
		log.Printf("CreateOrder failed: %s\n", err.Error())
		return nil, err
	}

	scheduleOrderHold(order.ID)
	return &order, nil
}

// scheduleOrderHold queues a one-shot job that expires the order if it is
// still pending when the hold window closes.
func scheduleOrderHold(orderId uint) {
	go func() {
		runsAt := time.Now().Add(config.ORDER_HOLD_DURATION_MINUTES * time.Minute).UTC()
		runDate := time.Date(
			runsAt.Year(),
			runsAt.Month(),
			runsAt.Day(),
			runsAt.Hour(),
			runsAt.Minute(),
			0,
			0,
			runsAt.Location(),
		)
		jobTaskID := uuid.New()
		payloadId := jobTaskID.String()
		topic := utils.WithSuffix("OrdersToExpire")
		jobTask := models.JobTask{
			Name:      fmt.Sprintf("Order_%d_Hold", orderId),
			JobType:   "OneTimeJobStartDateTime",
			RunsAt:    runDate,
			PayloadID: payloadId,
			Payload: map[string]any{
				"payloadId":        payloadId,
				"id":               orderId,
				"producerClientId": "PendingOrdersProducer",
				"topic":            topic,
				"table":            "booking_orders",
			},
			Source: "BookingOrder",
			Topic:  topic,
		}
		id, err := jobTask.CreateAndEnqueueJobTask(jobTask)
		if err != nil {
			log.Printf("Error creating hold job for Order: id=%d error=%s\n", orderId, err.Error())
			return
		}
		log.Printf("Created hold job for Order[%d] with ID %s\n", orderId, id)
	}()
}
