package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"hbs/src/config"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/models"
	"hbs/src/types"
	"io"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gosimple/slug"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func IsProd() bool {
	return config.API_ENV == "production"
}

// WithSuffix appends the environment suffix to a queue or topic name so
// parallel deployments never share a queue.
func WithSuffix(name string) string {
	suffix := os.Getenv("QUEUE_ENV_SUFFIX")
	if suffix == "" {
		return name
	}
	return fmt.Sprintf("%s_%s", name, suffix)
}

func GenerateJWT(email string, userId uint, role string) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &types.Claims{
		Username: email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userId),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func CreateNewProperty(ctx *gin.Context, params *types.CreatePropertyRequestBody, ownerId uint) (uint, error) {
	property := models.Property{
		Name:         params.Name,
		About:        &params.Description,
		Address:      params.Address,
		City:         params.City,
		Country:      params.Country,
		ContactEmail: params.ContactEmail,
		ContactPhone: params.ContactPhone,
		OwnerID:      ownerId,
		Slug:         slug.Make(params.Name),
	}

	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where(&models.User{ID: ownerId}).First(&user).Error; err != nil {
			return err
		}
		if user.Role != types.ROLE_HOST && user.Role != types.ROLE_ADMIN {
			err := errors.New("not enough permissions to perform this action")
			return err
		}
		if err := tx.Create(&property).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Println("Error: ", err.Error())
		return 0, err
	}
	return property.ID, err
}

func CreateNewRoom(ctx *gin.Context, params *types.CreateRoomRequestBody) (uint, error) {
	ownerId := ctx.GetUint("id")
	currency := params.Currency
	if currency == "" {
		currency = "vnd"
	}
	room := models.Room{
		PropertyID:  params.PropertyID,
		Name:        params.Name,
		Description: &params.Description,
		BasePrice:   params.BasePrice,
		Currency:    currency,
		MaxAdults:   params.MaxAdults,
		MaxChildren: params.MaxChildren,
	}

	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.
			Model(&models.Property{}).
			Where(&models.Property{ID: params.PropertyID}).
			First(&property).
			Error; err != nil {
			err := fmt.Errorf("property %d does not exist", params.PropertyID)
			return err
		}
		if property.OwnerID != ownerId {
			err := errors.New("not enough permissions to perform this action")
			return err
		}
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Println("Error: ", err.Error())
		return 0, err
	}
	return room.ID, err
}

func CreateNewPriceRule(ctx *gin.Context, params *types.CreatePriceRuleRequestBody) (uint, error) {
	ownerId := ctx.GetUint("id")
	startDate, err := time.Parse(config.DATE_PARSE_FORMAT, params.StartDate)
	if err != nil {
		return 0, err
	}
	endDate, err := time.Parse(config.DATE_PARSE_FORMAT, params.EndDate)
	if err != nil {
		return 0, err
	}
	rule := models.PriceRule{
		RoomID:       params.RoomID,
		StartDate:    startDate,
		EndDate:      endDate,
		NightlyPrice: params.NightlyPrice,
		Label:        params.Label,
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.
			Where(&models.Room{ID: params.RoomID}).
			Preload("Property").
			First(&room).
			Error; err != nil {
			err := fmt.Errorf("room %d does not exist", params.RoomID)
			return err
		}
		if room.Property.OwnerID != ownerId {
			err := errors.New("not enough permissions to perform this action")
			return err
		}
		if err := tx.Create(&rule).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Println("Error: ", err.Error())
		return 0, err
	}
	return rule.ID, err
}

func CreateNewPromotion(params *types.CreatePromotionRequestBody) (uint, error) {
	startDate, err := time.Parse(config.DATE_PARSE_FORMAT, params.StartDate)
	if err != nil {
		return 0, err
	}
	endDate, err := time.Parse(config.DATE_PARSE_FORMAT, params.EndDate)
	if err != nil {
		return 0, err
	}
	promotion := models.Promotion{
		Code:              params.Code,
		Name:              params.Name,
		Type:              types.PromotionType(params.Type),
		Percent:           params.Percent,
		FixedAmount:       params.FixedAmount,
		MinPurchaseAmount: params.MinPurchaseAmount,
		MaxDiscountAmount: params.MaxDiscountAmount,
		UsageLimit:        params.UsageLimit,
		StartDate:         startDate,
		EndDate:           endDate,
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&promotion).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Println("Error: ", err.Error())
		return 0, err
	}
	return promotion.ID, err
}

func GetRoomsForProperty(id uint) ([]*models.Room, error) {
	var rooms []*models.Room
	db := db.GetDb()
	err := db.
		Where(&models.Room{PropertyID: id}).
		Preload("PriceRules").
		Find(&rooms).
		Error
	return rooms, err
}

func GetOwnOrders(userId uint, filters *types.OrderQueryFilters) ([]models.BookingOrder, error) {
	db := db.GetDb()
	q := db.
		Model(&models.BookingOrder{}).
		Where(&models.BookingOrder{UserID: &userId})
	if filters != nil {
		if filters.Status != "" {
			q = q.Where("status = ?", filters.Status)
		}
		if filters.CreatedBefore != "" {
			if d, err := time.Parse(config.DATE_PARSE_FORMAT, filters.CreatedBefore); err == nil {
				q = q.Where("created_at < ?", d)
			}
		}
		if filters.CreatedAfter != "" {
			if d, err := time.Parse(config.DATE_PARSE_FORMAT, filters.CreatedAfter); err == nil {
				q = q.Where("created_at >= ?", d)
			}
		}
	}
	var orders []models.BookingOrder
	err := q.
		Preload("Reservations").
		Preload("Promotion").
		Preload("Invoices").
		Order("created_at DESC").
		Limit(20).
		Find(&orders).
		Error
	return orders, err
}

func UpdateRoomStatus(id uint, newStatus types.RoomStatus, oldStatus types.RoomStatus) error {
	db := db.GetDb()
	log.Println("UpdateRoomStatus: Begin Transaction")
	err := db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		conds := &models.Room{ID: id, Status: oldStatus}
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Table:    clause.Table{Name: clause.CurrentTable},
			}).
			Where(conds).
			First(&room).
			Error; err != nil {
			log.Printf("Failed to update room status: %s\n", err.Error())
			return err
		}
		if err := tx.
			Model(&models.Room{}).
			Where(conds).
			Update("status", newStatus).
			Error; err != nil {
			return err
		}
		return nil
	})
	return err
}

// CreateStripeCheckout opens a hosted checkout session for a card-paid order
// and records the pending Invoice. Returns the checkout URL, the session ID
// and the invoice ID.
func CreateStripeCheckout(ctx *gin.Context, order *models.BookingOrder) (*string, *string, *string, error) {
	sc := lib.GetStripeClient()
	successUrl := fmt.Sprintf("%s/checkout/callback/success", os.Getenv("APP_HOST"))
	metadata := map[string]string{
		"orderId":       fmt.Sprint(order.ID),
		"referenceCode": order.ReferenceCode,
	}
	piParams := &stripe.CheckoutSessionCreatePaymentIntentDataParams{}
	for k, v := range metadata {
		piParams.AddMetadata(k, v)
	}
	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL:        stripe.String(successUrl),
		UIMode:            stripe.String("hosted"),
		Mode:              stripe.String("payment"),
		PaymentIntentData: piParams,
		AfterExpiration: &stripe.CheckoutSessionCreateAfterExpirationParams{
			Recovery: &stripe.CheckoutSessionCreateAfterExpirationRecoveryParams{
				Enabled: stripe.Bool(true),
			},
		},
		Metadata: metadata,
	}

	lineItems := []*stripe.CheckoutSessionCreateLineItemParams{}
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, r := range order.Reservations {
			var room models.Room
			if err := tx.Where(&models.Room{ID: r.RoomID}).First(&room).Error; err != nil {
				return err
			}
			lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(room.Currency),
					UnitAmount: stripe.Int64(r.Subtotal),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%s (%s to %s)",
							room.Name,
							r.CheckIn.Format(config.DATE_PARSE_FORMAT),
							r.CheckOut.Format(config.DATE_PARSE_FORMAT))),
					},
				},
				Quantity: stripe.Int64(1),
			})
		}
		return nil
	})
	if err != nil {
		log.Printf("CreateStripeCheckout failed: %s\n", err.Error())
		return nil, nil, nil, err
	}
	if order.DiscountAmount > 0 {
		coupon, err := sc.V1Coupons.Create(context.Background(), &stripe.CouponCreateParams{
			AmountOff: stripe.Int64(order.DiscountAmount),
			Currency:  stripe.String(order.Currency),
			Duration:  stripe.String("once"),
			Name:      stripe.String(order.ReferenceCode),
		})
		if err != nil {
			log.Printf("CreateStripeCheckout failed: %s\n", err.Error())
			return nil, nil, nil, err
		}
		createParams.Discounts = []*stripe.CheckoutSessionCreateDiscountParams{
			{Coupon: stripe.String(coupon.ID)},
		}
	}
	createParams.LineItems = lineItems
	checkoutSession, err := sc.V1CheckoutSessions.Create(context.Background(), &createParams)
	if err != nil {
		log.Printf("CreateStripeCheckout failed: %s\n", err.Error())
		return nil, nil, nil, err
	}
	log.Printf("CheckoutSessionID: %s\n", checkoutSession.ID)
	recoveryURL := checkoutSession.AfterExpiration.Recovery.URL
	md := &types.Metadata{
		"AfterExpirationRecoveryURL": recoveryURL,
	}
	var invoiceId string
	err = db.Transaction(func(tx *gorm.DB) error {
		invoice := &models.Invoice{
			OrderID:           order.ID,
			Currency:          order.Currency,
			Amount:            order.TotalAmount,
			CheckoutSessionId: &checkoutSession.ID,
			Status:            types.INVOICE_PENDING,
			Metadata:          md,
		}
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		invoiceId = invoice.ID.String()
		return nil
	})
	if err != nil {
		log.Printf("Error while creating Invoice: %s\n", err.Error())
		return nil, nil, nil, err
	}
	rd := lib.GetRedisClient()
	_, err = rd.SetEx(context.Background(), order.ReferenceCode, invoiceId, 10*time.Minute).Result()
	if err != nil {
		log.Printf("Error caching value [%s]: %s\n", invoiceId, err.Error())
	}

	return &checkoutSession.URL, &checkoutSession.ID, &invoiceId, nil
}

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}
