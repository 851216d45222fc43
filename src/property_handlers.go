package main

import (
	"errors"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func propertyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/properties", func(ctx *gin.Context) {
			var body types.CreatePropertyRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			id, err := utils.CreateNewProperty(ctx, &body, ownerId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		GET("/properties", func(ctx *gin.Context) {
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var properties []models.Property
			if err := db.
				Model(&models.Property{}).
				Where(&models.Property{OwnerID: ownerId}).
				Preload("Rooms").
				Order("created_at DESC").
				Find(&properties).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": properties, "count": len(properties)})
		}).
		GET("/properties/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var property models.Property
			ss := db.Session(&gorm.Session{PrepareStmt: true})
			if err := ss.
				Model(&models.Property{}).
				Where(&models.Property{ID: params.ID, OwnerID: ownerId}).
				Preload("Rooms").
				Preload("Rooms.PriceRules").
				Preload("Reviews").
				First(&property).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": property})
		}).
		GET("/properties/:id/rooms", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			rooms, err := utils.GetRoomsForProperty(params.ID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rooms, "count": len(rooms)})
		}).
		PUT("/properties/:id/publish", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var property models.Property
				if err := tx.
					Where(&models.Property{ID: params.ID, OwnerID: ownerId}).
					First(&property).
					Error; err != nil {
					return err
				}
				if property.Status == types.PROPERTY_ACTIVE {
					return errors.New("property is already published")
				}
				return tx.
					Model(&models.Property{}).
					Where(&models.Property{ID: params.ID}).
					Update("status", types.PROPERTY_ACTIVE).
					Error
			})
			if err != nil {
				log.Printf("Could not publish property [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/properties/:id/unpublish", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var property models.Property
				if err := tx.
					Where(&models.Property{ID: params.ID, OwnerID: ownerId}).
					First(&property).
					Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Property{}).
					Where(&models.Property{ID: params.ID}).
					Update("status", types.PROPERTY_INACTIVE).
					Error
			})
			if err != nil {
				log.Printf("Could not unpublish property [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
