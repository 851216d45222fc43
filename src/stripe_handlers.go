package main

import (
	"encoding/json"
	"errors"
	"hbs/src/booking"
	"hbs/src/common"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func orderIdFromMetadata(md map[string]string) (uint, bool) {
	id := md["orderId"]
	atoi, err := strconv.Atoi(id)
	if err != nil {
		return 0, false
	}
	return uint(atoi), true
}

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			log.Printf("[CheckoutSession] ID: %s %s\n", cs.ID, cs.Status)
			orderId, ok := orderIdFromMetadata(cs.Metadata)
			if !ok {
				log.Printf("Could not read orderId from metadata of session %s\n", cs.ID)
				break
			}
			go func() {
				db := db.GetDb()
				err := db.Transaction(func(tx *gorm.DB) error {
					updates := map[string]any{
						"status":      types.INVOICE_PAID,
						"amount_paid": cs.AmountTotal,
					}
					if cs.PaymentIntent != nil {
						updates["payment_intent_id"] = cs.PaymentIntent.ID
					}
					return tx.
						Model(&models.Invoice{}).
						Where("checkout_session_id = ?", cs.ID).
						Updates(updates).
						Error
				})
				if err != nil {
					log.Printf("Error updating invoice for session [%s]: %s\n", cs.ID, err.Error())
					return
				}
				if _, err := booking.TransitionOrder(orderId, types.ORDER_CONFIRMED); err != nil {
					if !errors.Is(err, booking.ErrInvalidTransition) {
						log.Printf("Error confirming order [%d]: %s\n", orderId, err.Error())
					}
					return
				}
				go common.SendOrderConfirmationEmail(orderId)
				go common.SyncOrderToHostCalendar(orderId)
			}()
		case "checkout.session.expired":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			go func() {
				db := db.GetDb()
				err := db.Transaction(func(tx *gorm.DB) error {
					return tx.
						Model(&models.Invoice{}).
						Where("checkout_session_id = ?", cs.ID).
						Where("status = ?", types.INVOICE_PENDING).
						Update("status", types.INVOICE_EXPIRED).
						Error
				})
				if err != nil {
					log.Printf("Error expiring invoice for session [%s]: %s\n", cs.ID, err.Error())
				}
			}()
		case "charge.refunded":
			var ch stripe.Charge
			if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
				log.Printf("[Stripe] Error parsing Charge: %s\n", err.Error())
				break
			}
			if ch.PaymentIntent == nil {
				break
			}
			go func() {
				db := db.GetDb()
				err := db.Transaction(func(tx *gorm.DB) error {
					return tx.
						Model(&models.Invoice{}).
						Where("payment_intent_id = ?", ch.PaymentIntent.ID).
						Update("status", types.INVOICE_REFUNDED).
						Error
				})
				if err != nil {
					log.Printf("Error refunding invoice for charge [%s]: %s\n", ch.ID, err.Error())
				}
			}()
		}
		ctx.Status(http.StatusNoContent)
	})
	return apiv1
}
