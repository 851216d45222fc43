package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hbs/src/booking"
	"hbs/src/common"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	awslib "hbs/src/lib/aws"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

func orderStatusFromError(err error) int {
	switch {
	case errors.Is(err, booking.ErrRoomUnavailable):
		return http.StatusConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidDateRange),
		errors.Is(err, booking.ErrRoomNotBookable),
		errors.Is(err, booking.ErrCapacityExceeded),
		errors.Is(err, booking.ErrPromotionNotFound),
		errors.Is(err, models.ErrPromotionInactive),
		errors.Is(err, models.ErrPromotionExhausted),
		errors.Is(err, models.ErrPromotionMinPurchase):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/orders", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			order, err := booking.CreateOrder(&userId, &body)
			if err != nil {
				ctx.JSON(orderStatusFromError(err), gin.H{"error": err.Error()})
				return
			}
			if order.PaymentMethod == "card" {
				url, sessionId, invoiceId, err := utils.CreateStripeCheckout(ctx, order)
				if err != nil {
					log.Printf("Checkout setup failed for order [%d]: %s\n", order.ID, err.Error())
					ctx.JSON(http.StatusCreated, gin.H{"data": order, "checkout_error": err.Error()})
					return
				}
				ctx.JSON(http.StatusCreated, gin.H{
					"data":         order,
					"checkout_url": url,
					"session_id":   sessionId,
					"invoice_id":   invoiceId,
				})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": order})
		}).
		GET("/orders", func(ctx *gin.Context) {
			var filters types.OrderQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			orders, err := utils.GetOwnOrders(userId, &filters)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var order models.BookingOrder
			ss := db.Session(&gorm.Session{PrepareStmt: true})
			if err := ss.
				Where(&models.BookingOrder{ID: params.ID, UserID: &userId}).
				Preload("Reservations").
				Preload("Reservations.Room").
				Preload("Promotion").
				Preload("Invoices").
				First(&order).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		}).
		PUT("/orders/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var count int64
			if err := db.
				Model(&models.BookingOrder{}).
				Where(&models.BookingOrder{ID: params.ID, UserID: &userId}).
				Count(&count).
				Error; err != nil || count == 0 {
				ctx.Status(http.StatusNotFound)
				return
			}
			if _, err := booking.TransitionOrder(params.ID, types.ORDER_CANCELED); err != nil {
				if errors.Is(err, booking.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go common.SendOrderCanceledEmail(params.ID)
			ctx.Status(http.StatusNoContent)
		}).
		GET("/reservations/:id/qr", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var reservation models.Reservation
			if err := db.
				Where(&models.Reservation{ID: params.ID}).
				Preload("Order").
				First(&reservation).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			if reservation.Order.UserID == nil || *reservation.Order.UserID != userId {
				ctx.Status(http.StatusNotFound)
				return
			}
			if time.Now().After(reservation.CheckOut) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "stay has already ended"})
				return
			}

			rawData := map[string]any{
				"reservationId": reservation.ID,
				"code":          reservation.CheckinCode,
			}
			rawBytes, _ := json.Marshal(rawData)
			keyEnv := os.Getenv("API_QRC_SECRET")
			key, err := hex.DecodeString(keyEnv)
			if err != nil {
				log.Printf("Could not read key from string: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			encryptedMessage, err := utils.EncryptMessage(key, string(rawBytes))
			if err != nil {
				log.Printf("Error encrypting message: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			qrc, err := qrcode.New(encryptedMessage)
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filename := fmt.Sprintf("reservation_%d_qr", reservation.ID)
			filepath := path.Join(tempdir, fmt.Sprintf("%s.jpeg", filename))
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if utils.IsProd() {
				url, err := awslib.S3UploadPhoto(filename, filepath, "image/jpeg")
				if err != nil {
					log.Printf("Error uploading asset to S3 bucket: %s\n", err.Error())
					ctx.Status(http.StatusBadRequest)
					return
				}
				rd := lib.GetRedisClient()
				rd.SetEx(context.Background(), filename, *url, 2*time.Hour)
			}
			ctx.FileAttachment(filepath, "checkin-code.jpeg")
		})
	return g
}

// toOrderResponse flattens an order for the host view. Reservations carry
// their own timestamps; the guest's check-in code never leaves the server.
func toOrderResponse(order *models.BookingOrder) *types.APIResponseOrder {
	resp := &types.APIResponseOrder{
		ID:             order.ID,
		ReferenceCode:  order.ReferenceCode,
		GuestName:      order.GuestName,
		GuestEmail:     order.GuestEmail,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
		Currency:       order.Currency,
		Status:         string(order.Status),
		Timestamps:     order.Timestamps,
	}
	if order.Promotion != nil {
		resp.PromotionCode = &order.Promotion.Code
	}
	for i := range order.Reservations {
		r := &order.Reservations[i]
		resp.Reservations = append(resp.Reservations, &types.APIResponseReservation{
			ID:         r.ID,
			RoomID:     r.RoomID,
			CheckIn:    &r.CheckIn,
			CheckOut:   &r.CheckOut,
			Adults:     r.Adults,
			Children:   r.Children,
			Subtotal:   r.Subtotal,
			Status:     string(r.Status),
			Timestamps: r.Timestamps,
		})
	}
	return resp
}

func hostOrderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/host/orders", func(ctx *gin.Context) {
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			sub := db.
				Model(&models.Reservation{}).
				Select("reservations.order_id").
				Joins("JOIN rooms ON rooms.id = reservations.room_id").
				Joins("JOIN properties ON properties.id = rooms.property_id").
				Where("properties.owner_id = ?", ownerId)
			var orders []models.BookingOrder
			if err := db.
				Model(&models.BookingOrder{}).
				Where("id IN (?)", sub).
				Preload("Reservations").
				Preload("Promotion").
				Preload("Invoices").
				Order("created_at DESC").
				Limit(100).
				Find(&orders).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			data := make([]*types.APIResponseOrder, 0, len(orders))
			for i := range orders {
				data = append(data, toOrderResponse(&orders[i]))
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		PUT("/orders/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			order, err := booking.TransitionOrder(params.ID, types.ORDER_CONFIRMED)
			if err != nil {
				if errors.Is(err, booking.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(orderStatusFromError(err), gin.H{"error": err.Error()})
				return
			}
			// Cash and transfer orders get their invoice here; card orders
			// already have one from checkout.
			if order.PaymentMethod != "card" {
				db := db.GetDb()
				if err := db.Transaction(func(tx *gorm.DB) error {
					var count int64
					if err := tx.
						Model(&models.Invoice{}).
						Where(&models.Invoice{OrderID: order.ID}).
						Count(&count).
						Error; err != nil {
						return err
					}
					if count > 0 {
						return nil
					}
					invoice := &models.Invoice{
						OrderID:  order.ID,
						Currency: order.Currency,
						Amount:   order.TotalAmount,
						Status:   types.INVOICE_PENDING,
					}
					return tx.Create(invoice).Error
				}); err != nil {
					log.Printf("Error creating invoice for order [%d]: %s\n", order.ID, err.Error())
				}
			}
			go common.SendOrderConfirmationEmail(order.ID)
			go common.SyncOrderToHostCalendar(order.ID)
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		}).
		PUT("/orders/:id/checkin", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CheckInRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var count int64
			if err := db.
				Model(&models.Reservation{}).
				Where(&models.Reservation{OrderID: params.ID, CheckinCode: body.Code}).
				Count(&count).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if count == 0 {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid check-in code"})
				return
			}
			order, err := booking.TransitionOrder(params.ID, types.ORDER_CHECKED_IN)
			if err != nil {
				if errors.Is(err, booking.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(orderStatusFromError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		}).
		PUT("/orders/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			order, err := booking.TransitionOrder(params.ID, types.ORDER_CHECKED_OUT)
			if err != nil {
				if errors.Is(err, booking.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(orderStatusFromError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		}).
		PUT("/orders/:id/complete", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			order, err := booking.TransitionOrder(params.ID, types.ORDER_COMPLETED)
			if err != nil {
				if errors.Is(err, booking.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(orderStatusFromError(err), gin.H{"error": err.Error()})
				return
			}
			// Settle outstanding cash/transfer invoices at completion.
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Invoice{}).
					Where(&models.Invoice{OrderID: order.ID, Status: types.INVOICE_PENDING}).
					Updates(map[string]any{
						"status":      types.INVOICE_PAID,
						"amount_paid": order.TotalAmount,
					}).
					Error
			}); err != nil {
				log.Printf("Error settling invoices for order [%d]: %s\n", order.ID, err.Error())
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		}).
		PUT("/orders/:id/void", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			order, err := booking.TransitionOrder(params.ID, types.ORDER_CANCELED)
			if err != nil {
				if errors.Is(err, booking.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(orderStatusFromError(err), gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			if err := db.
				Model(&models.Invoice{}).
				Where(&models.Invoice{OrderID: order.ID, Status: types.INVOICE_PENDING}).
				Update("status", types.INVOICE_VOID).
				Error; err != nil {
				log.Printf("Error voiding invoices for order [%d]: %s\n", order.ID, err.Error())
			}
			go common.SendOrderCanceledEmail(order.ID)
			ctx.Status(http.StatusNoContent)
		})
	return g
}
