package booking

import (
	"hbs/src/db"
	"hbs/src/types"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestParseStayDate(t *testing.T) {
	d, err := ParseStayDate("2025-12-01")
	assert.Nil(t, err)
	assert.Equal(t, date(2025, 12, 1), d)

	_, err = ParseStayDate("01/12/2025")
	assert.NotNil(t, err)
}

func TestNewReferenceCode(t *testing.T) {
	code := NewReferenceCode()
	assert.True(t, strings.HasPrefix(code, "HB-"))
	assert.NotEqual(t, code, NewReferenceCode())
}

func TestCreateOrderRejectsBadDates(t *testing.T) {
	body := &types.CreateOrderRequestBody{
		GuestName:     "Test Guest",
		GuestEmail:    "guest@example.com",
		PaymentMethod: "cash",
		Items: []types.OrderItem{
			{RoomID: 1, CheckIn: "2025-12-04", CheckOut: "2025-12-01", Adults: 2},
		},
	}
	order, err := CreateOrder(nil, body)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.Nil(t, order)

	body.Items[0].CheckOut = body.Items[0].CheckIn
	order, err = CreateOrder(nil, body)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.Nil(t, order)
}

func TestCreateOrderRejectsOverlappingStaysWithinOneOrder(t *testing.T) {
	body := &types.CreateOrderRequestBody{
		GuestName:     "Test Guest",
		GuestEmail:    "guest@example.com",
		PaymentMethod: "cash",
		Items: []types.OrderItem{
			{RoomID: 1, CheckIn: "2025-12-02", CheckOut: "2025-12-05", Adults: 2},
			{RoomID: 1, CheckIn: "2025-12-04", CheckOut: "2025-12-06", Adults: 1},
		},
	}
	order, err := CreateOrder(nil, body)
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.Nil(t, order)

	body.Items[1] = body.Items[0]
	order, err = CreateOrder(nil, body)
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.Nil(t, order)
}

func TestCreateOrderSecondOverlappingRequestRejected(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	// The serialized loser: room lock acquired, but the winner's reservation
	// is already on the ledger. Nothing may be inserted and the transaction
	// must roll back.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "rooms"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "property_id", "status", "base_price", "max_adults", "max_children"}).
			AddRow(1, 1, "available", 1_000_000, 2, 2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	body := &types.CreateOrderRequestBody{
		GuestName:     "Test Guest",
		GuestEmail:    "guest@example.com",
		PaymentMethod: "cash",
		Items: []types.OrderItem{
			{RoomID: 1, CheckIn: "2025-12-02", CheckOut: "2025-12-05", Adults: 2},
		},
	}
	order, err := CreateOrder(nil, body)
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.Nil(t, order)
	assert.Nil(t, mock.ExpectationsWereMet())
}
