package main

import (
	"errors"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func promotionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/promotions", func(ctx *gin.Context) {
			var body types.CreatePromotionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if body.Type == string(types.PROMOTION_PERCENTAGE) && body.Percent == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "percentage promotions need a percent value"})
				return
			}
			if body.Type == string(types.PROMOTION_FIXED) && body.FixedAmount == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "fixed promotions need a fixed_amount value"})
				return
			}
			id, err := utils.CreateNewPromotion(&body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		GET("/promotions", func(ctx *gin.Context) {
			db := db.GetDb()
			var promotions []models.Promotion
			if err := db.
				Order("created_at DESC").
				Limit(100).
				Find(&promotions).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": promotions, "count": len(promotions)})
		})
	return g
}

// promotionPreviewHandlers lets guests validate a code against a subtotal
// before placing the order.
func promotionPreviewHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/promotions/:code/preview", func(ctx *gin.Context) {
			var params struct {
				Code string `uri:"code" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var query struct {
				Subtotal int64 `form:"subtotal" binding:"required,gt=0"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var promo models.Promotion
			if err := db.
				Where(&models.Promotion{Code: params.Code}).
				First(&promo).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := promo.UsableAt(time.Now(), query.Subtotal); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			discount := promo.Discount(query.Subtotal)
			ctx.JSON(http.StatusOK, gin.H{
				"code":     promo.Code,
				"discount": discount,
				"total":    query.Subtotal - discount,
			})
		})
	return g
}
