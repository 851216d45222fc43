package main

import (
	"errors"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func reviewHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/reviews", func(ctx *gin.Context) {
			var body types.CreateReviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var review models.Review
			err := db.Transaction(func(tx *gorm.DB) error {
				// Only guests who completed a stay at the property can review it.
				var stays int64
				if err := tx.
					Model(&models.Reservation{}).
					Joins("JOIN rooms ON rooms.id = reservations.room_id").
					Joins("JOIN booking_orders ON booking_orders.id = reservations.order_id").
					Where("rooms.property_id = ?", body.PropertyID).
					Where("booking_orders.user_id = ?", userId).
					Where("booking_orders.status = ?", types.ORDER_COMPLETED).
					Count(&stays).
					Error; err != nil {
					return err
				}
				if stays == 0 {
					return errors.New("only guests with a completed stay can leave a review")
				}
				var existing int64
				if err := tx.
					Model(&models.Review{}).
					Where(&models.Review{PropertyID: body.PropertyID, UserID: userId}).
					Count(&existing).
					Error; err != nil {
					return err
				}
				if existing > 0 {
					return errors.New("you have already reviewed this property")
				}
				review = models.Review{
					PropertyID: body.PropertyID,
					UserID:     userId,
					Rating:     body.Rating,
					Comment:    body.Comment,
				}
				return tx.Create(&review).Error
			})
			if err != nil {
				log.Printf("Error creating review: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": review.ID})
		}).
		GET("/properties/:id/reviews", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var reviews []models.Review
			if err := db.
				Where(&models.Review{PropertyID: params.ID, Status: "published"}).
				Preload("User").
				Order("created_at DESC").
				Limit(100).
				Find(&reviews).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reviews, "count": len(reviews)})
		})
	return g
}
