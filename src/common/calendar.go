package common

import (
	"context"
	"encoding/json"
	"fmt"
	"hbs/src/config"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/models"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// SyncOrderToHostCalendar mirrors a confirmed order onto each host's Google
// calendar as all-day events. Hosts without a connected calendar are skipped.
func SyncOrderToHostCalendar(orderId uint) {
	db := db.GetDb()
	var order models.BookingOrder
	if err := db.
		Where(&models.BookingOrder{ID: orderId}).
		Preload("Reservations").
		Preload("Reservations.Room").
		Preload("Reservations.Room.Property").
		First(&order).
		Error; err != nil {
		log.Printf("Error loading order [%d]: %s\n", orderId, err.Error())
		return
	}

	byOwner := map[uint][]models.Reservation{}
	for _, r := range order.Reservations {
		ownerId := r.Room.Property.OwnerID
		byOwner[ownerId] = append(byOwner[ownerId], r)
	}
	for ownerId, reservations := range byOwner {
		var tok models.Token
		if err := db.
			Where(&models.Token{
				RequestedBy:   ownerId,
				RequesterType: "user",
				Type:          models.TokenTypeAccess,
				TokenName:     "calendar_token",
				Status:        "active",
			}).
			First(&tok).
			Error; err != nil {
			continue
		}
		var token oauth2.Token
		b, err := json.Marshal(tok.TokenValue)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(b, &token); err != nil {
			continue
		}
		oauthcfg := &oauth2.Config{
			ClientID:     config.OAUTH_CLIENT_ID,
			ClientSecret: config.OAUTH_CLIENT_SECRET,
			Endpoint:     google.Endpoint,
		}
		svc, err := lib.GAPICreateCalendarService(context.Background(), &token, oauthcfg)
		if err != nil {
			log.Printf("Failed to create Calendar service for host [%d]: %s\n", ownerId, err.Error())
			continue
		}
		calId := "primary"
		if tok.Metadata != nil {
			if v, ok := (*tok.Metadata)["calendarId"].(string); ok && v != "" {
				calId = v
			}
		}
		for _, r := range reservations {
			evtId := strings.ReplaceAll(uuid.NewString(), "-", "")
			err := lib.GAPIAddEvent(calId, &calendar.Event{
				Id:      evtId,
				Summary: fmt.Sprintf("%s / %s (%s)", r.Room.Property.Name, r.Room.Name, order.ReferenceCode),
				Start: &calendar.EventDateTime{
					Date: r.CheckIn.Format(config.DATE_PARSE_FORMAT),
				},
				End: &calendar.EventDateTime{
					Date: r.CheckOut.Format(config.DATE_PARSE_FORMAT),
				},
				Description: fmt.Sprintf("Guest: %s", order.GuestName),
			}, svc)
			if err != nil {
				log.Printf("Failed to add stay to Calendar: %s\n", err.Error())
			}
		}
	}
}
