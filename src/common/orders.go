package common

import (
	"errors"
	"fmt"
	"hbs/src/booking"
	"hbs/src/config"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/lib/mailer"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"strings"

	"github.com/tidwall/gjson"
)

// OrdersToExpireConsumer drains the expiry topic. Each message carries the
// id of an order whose payment hold has run out; orders that already left
// pending are left alone.
func OrdersToExpireConsumer() {
	topic := utils.WithSuffix("OrdersToExpire")
	RunKafkaConsumer("hbs-orders", topic, KafkaOrdersToExpireConsumer)
}

func KafkaOrdersToExpireConsumer(spayload string) {
	if !gjson.Valid(spayload) {
		log.Println("[OrdersToExpire]: Received invalid json body. Aborting")
		return
	}
	val := gjson.Get(spayload, "id")
	payloadId := gjson.Get(spayload, "payloadId").String()
	orderId := uint(val.Int())
	log.Printf("[OrdersToExpire]: %d\n", orderId)
	go func() {
		_, err := booking.TransitionOrder(orderId, types.ORDER_EXPIRED)
		if err != nil {
			if errors.Is(err, booking.ErrInvalidTransition) {
				log.Printf("Order [%d] is no longer pending. Nothing to expire\n", orderId)
				return
			}
			log.Printf("Error expiring order [%d]: %s\n", orderId, err.Error())
			return
		}
		go SendOrderExpiredEmail(orderId)
	}()
	// UPDATE JOB
	go markJobTaskDone(payloadId)
}

func orderWithStays(orderId uint) (*models.BookingOrder, error) {
	db := db.GetDb()
	var order models.BookingOrder
	err := db.
		Where(&models.BookingOrder{ID: orderId}).
		Preload("Reservations").
		Preload("Reservations.Room").
		First(&order).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func staysHtml(order *models.BookingOrder) string {
	var sb strings.Builder
	for _, r := range order.Reservations {
		fmt.Fprintf(&sb, "<p>%s: %s to %s (%d nights)</p>",
			r.Room.Name,
			r.CheckIn.Format(config.DATE_PARSE_FORMAT),
			r.CheckOut.Format(config.DATE_PARSE_FORMAT),
			r.Nights(),
		)
	}
	return sb.String()
}

// SendOrderConfirmationEmail mails the guest their reference code and stay
// summary once an order is confirmed.
func SendOrderConfirmationEmail(orderId uint) {
	order, err := orderWithStays(orderId)
	if err != nil {
		log.Printf("Error loading order [%d]: %s\n", orderId, err.Error())
		return
	}
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Booking confirmed: %s", order.ReferenceCode),
		From:     config.SMTP_FROM,
		FromName: "Homestay Bookings",
		To:       []string{order.GuestEmail},
		Body: fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your booking <b>%s</b> is confirmed.</p>
			%s
			<p>Total: %d %s</p>
			<p>Present your check-in code at the property on arrival.</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			order.GuestName,
			order.ReferenceCode,
			staysHtml(order),
			order.TotalAmount,
			strings.ToUpper(order.Currency),
		),
		Html: true,
	}
	if err := mailer.NewMailerMessage(input); err != nil {
		log.Printf("[mailer] Error sending message: %s\n", err.Error())
		return
	}
}

// SendOrderCanceledEmail confirms a cancellation to the guest.
func SendOrderCanceledEmail(orderId uint) {
	order, err := orderWithStays(orderId)
	if err != nil {
		log.Printf("Error loading order [%d]: %s\n", orderId, err.Error())
		return
	}
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Booking canceled: %s", order.ReferenceCode),
		From:     config.SMTP_FROM,
		FromName: "Homestay Bookings",
		To:       []string{order.GuestEmail},
		Body: fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your booking <b>%s</b> has been canceled and its rooms released.</p>
			%s
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			order.GuestName,
			order.ReferenceCode,
			staysHtml(order),
		),
		Html: true,
	}
	if err := mailer.NewMailerMessage(input); err != nil {
		log.Printf("[mailer] Error sending message: %s\n", err.Error())
		return
	}
}

// SendOrderExpiredEmail tells the guest their payment hold lapsed.
func SendOrderExpiredEmail(orderId uint) {
	order, err := orderWithStays(orderId)
	if err != nil {
		log.Printf("Error loading order [%d]: %s\n", orderId, err.Error())
		return
	}
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Booking expired: %s", order.ReferenceCode),
		From:     config.SMTP_FROM,
		FromName: "Homestay Bookings",
		To:       []string{order.GuestEmail},
		Body: fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your booking <b>%s</b> was not paid within %d minutes and has expired. The rooms are available again.</p>
			<p>You are welcome to place a new booking at any time.</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			order.GuestName,
			order.ReferenceCode,
			config.ORDER_HOLD_DURATION_MINUTES,
		),
		Html: true,
	}
	if err := mailer.NewMailerMessage(input); err != nil {
		log.Printf("[mailer] Error sending message: %s\n", err.Error())
		return
	}
}
