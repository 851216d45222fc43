package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

type RoomStatus string

const (
	ROOM_AVAILABLE   RoomStatus = "available"
	ROOM_MAINTENANCE RoomStatus = "maintenance"
	ROOM_OCCUPIED    RoomStatus = "occupied"
)

type PropertyStatus string

const (
	PROPERTY_DRAFT    PropertyStatus = "draft"
	PROPERTY_ACTIVE   PropertyStatus = "active"
	PROPERTY_INACTIVE PropertyStatus = "inactive"
)

type ReservationStatus string

const (
	RESERVATION_PENDING     ReservationStatus = "pending"
	RESERVATION_CONFIRMED   ReservationStatus = "confirmed"
	RESERVATION_CHECKED_IN  ReservationStatus = "checked_in"
	RESERVATION_CHECKED_OUT ReservationStatus = "checked_out"
	RESERVATION_CANCELED    ReservationStatus = "cancelled"
	RESERVATION_COMPLETED   ReservationStatus = "completed"
)

type OrderStatus string

const (
	ORDER_PENDING     OrderStatus = "pending"
	ORDER_CONFIRMED   OrderStatus = "confirmed"
	ORDER_CHECKED_IN  OrderStatus = "checked_in"
	ORDER_CHECKED_OUT OrderStatus = "checked_out"
	ORDER_COMPLETED   OrderStatus = "completed"
	ORDER_CANCELED    OrderStatus = "cancelled"
	ORDER_EXPIRED     OrderStatus = "expired"
)

type PromotionType string

const (
	PROMOTION_PERCENTAGE PromotionType = "percentage"
	PROMOTION_FIXED      PromotionType = "fixed"
)

type InvoiceStatus string

const (
	INVOICE_PENDING  InvoiceStatus = "pending"
	INVOICE_PAID     InvoiceStatus = "paid"
	INVOICE_VOID     InvoiceStatus = "void"
	INVOICE_EXPIRED  InvoiceStatus = "expired"
	INVOICE_REFUNDED InvoiceStatus = "refunded"
)

const (
	ROLE_GUEST string = "guest"
	ROLE_HOST  string = "host"
	ROLE_ADMIN string = "admin"
)

type CreatePropertyRequestBody struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description,omitempty"`
	Address      string `json:"address" binding:"required"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	ContactEmail string `json:"email,omitempty"`
	ContactPhone string `json:"phone,omitempty"`
}

type CreateRoomRequestBody struct {
	PropertyID  uint   `json:"property" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	BasePrice   int64  `json:"base_price" binding:"required,gt=0"`
	Currency    string `json:"currency,omitempty"`
	MaxAdults   uint   `json:"max_adults" binding:"required,gt=0"`
	MaxChildren uint   `json:"max_children"`
}

type CreatePriceRuleRequestBody struct {
	RoomID       uint   `json:"room" binding:"required"`
	StartDate    string `json:"start_date" binding:"required,staydate"`
	EndDate      string `json:"end_date" binding:"required,staydate,gtdate=StartDate"`
	NightlyPrice int64  `json:"nightly_price" binding:"required,gt=0"`
	Label        string `json:"label,omitempty"`
}

type CreatePromotionRequestBody struct {
	Code              string  `json:"code" binding:"required"`
	Name              string  `json:"name,omitempty"`
	Type              string  `json:"type" binding:"required,oneof=percentage fixed"`
	Percent           float64 `json:"percent,omitempty" binding:"omitempty,gt=0,lte=100"`
	FixedAmount       int64   `json:"fixed_amount,omitempty" binding:"omitempty,gt=0"`
	MinPurchaseAmount int64   `json:"min_purchase_amount,omitempty"`
	MaxDiscountAmount int64   `json:"max_discount_amount,omitempty"`
	UsageLimit        uint    `json:"usage_limit,omitempty"`
	StartDate         string  `json:"start_date" binding:"required,staydate"`
	EndDate           string  `json:"end_date" binding:"required,staydate,gtdate=StartDate"`
}

// OrderItem is one requested room/date slot. CheckOut is exclusive.
type OrderItem struct {
	RoomID   uint   `json:"room" binding:"required"`
	CheckIn  string `json:"check_in" binding:"required,staydate"`
	CheckOut string `json:"check_out" binding:"required,staydate,gtdate=CheckIn"`
	Adults   uint   `json:"adults" binding:"required,gt=0"`
	Children uint   `json:"children"`
}

type CreateOrderRequestBody struct {
	GuestName     string      `json:"guest_name" binding:"required"`
	GuestEmail    string      `json:"guest_email" binding:"required,email"`
	GuestPhone    string      `json:"guest_phone,omitempty"`
	PaymentMethod string      `json:"payment_method" binding:"required,oneof=cash card transfer"`
	PromotionCode string      `json:"promotion_code,omitempty"`
	Items         []OrderItem `json:"items" binding:"required,min=1,dive"`
}

type CreateReviewRequestBody struct {
	PropertyID uint   `json:"property" binding:"required"`
	Rating     uint   `json:"rating" binding:"required,gte=1,lte=5"`
	Comment    string `json:"comment,omitempty"`
}

type CreateSettingRequestBody struct {
	Key   string `json:"key" binding:"required"`
	Value JSONB  `json:"value" binding:"required"`
	Group string `json:"group,omitempty"`
}

type CheckInRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type RegisterUserRequestBody struct {
	Email string `json:"email" binding:"required"`
}

type AvailabilityQueryParams struct {
	CheckIn  string `form:"check_in" binding:"required"`
	CheckOut string `form:"check_out" binding:"required"`
}

type RoomQueryFilters struct {
	PropertyID uint   `form:"property,omitempty"`
	Status     string `form:"status,omitempty"`
}

type OrderQueryFilters struct {
	Status        string `form:"status,omitempty"`
	CreatedBefore string `form:"created_before,omitempty"`
	CreatedAfter  string `form:"created_after,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type APIResponseReservation struct {
	ID       uint       `json:"id"`
	RoomID   uint       `json:"room_id,omitempty"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Adults   uint       `json:"adults,omitempty"`
	Children uint       `json:"children,omitempty"`
	Subtotal int64      `json:"subtotal"`
	Status   string     `json:"status,omitempty"`

	Timestamps
}

type APIResponseOrder struct {
	ID             uint    `json:"id"`
	ReferenceCode  string  `json:"reference_code,omitempty"`
	GuestName      string  `json:"guest_name,omitempty"`
	GuestEmail     string  `json:"guest_email,omitempty"`
	Subtotal       int64   `json:"subtotal"`
	DiscountAmount int64   `json:"discount_amount,omitempty"`
	TotalAmount    int64   `json:"total_amount"`
	Currency       string  `json:"currency,omitempty"`
	Status         string  `json:"status,omitempty"`
	PromotionCode  *string `json:"promotion_code,omitempty"`

	Reservations []*APIResponseReservation `json:"reservations,omitempty"`

	Timestamps
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	UID      string `json:"uid"`
	jwt.RegisteredClaims
}

type Oauth2FlowState struct {
	AccountID   uint   `json:"account_id"`
	AccountType string `json:"account_type"`
	Nonce       string `json:"nonce"`
	Redirect    string `json:"redirect"`
}

type Handler func(payload string)
