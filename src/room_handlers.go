package main

import (
	"errors"
	"hbs/src/booking"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// availabilityRoutes is the public search surface. No auth so guests can
// check dates before registering.
func availabilityRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/rooms/:id/availability", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var query types.AvailabilityQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkIn, err := booking.ParseStayDate(query.CheckIn)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": booking.ErrInvalidDateRange.Error()})
				return
			}
			checkOut, err := booking.ParseStayDate(query.CheckOut)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": booking.ErrInvalidDateRange.Error()})
				return
			}
			db := db.GetDb()
			var room models.Room
			if err := db.
				Where(&models.Room{ID: params.ID}).
				First(&room).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			available, err := booking.IsRoomAvailable(db, params.ID, checkIn, checkOut)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if room.Status != types.ROOM_AVAILABLE {
				available = false
			}
			resp := gin.H{
				"available": available,
				"nights":    booking.Nights(checkIn, checkOut),
			}
			if available {
				total, err := booking.PriceForRoom(db, params.ID, checkIn, checkOut)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				resp["total"] = total
				resp["currency"] = room.Currency
			}
			ctx.JSON(http.StatusOK, resp)
		}).
		GET("/listings/:slug", func(ctx *gin.Context) {
			var params struct {
				Slug string `uri:"slug" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var property models.Property
			if err := db.
				Where(&models.Property{Slug: params.Slug, Status: types.PROPERTY_ACTIVE}).
				Preload("Rooms").
				Preload("Reviews").
				First(&property).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": property})
		})
	return apiv1
}

func roomHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/rooms", func(ctx *gin.Context) {
			var body types.CreateRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := utils.CreateNewRoom(ctx, &body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		GET("/rooms", func(ctx *gin.Context) {
			var filters types.RoomQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			q := db.
				Model(&models.Room{}).
				Joins("JOIN properties ON properties.id = rooms.property_id").
				Where("properties.owner_id = ?", ownerId)
			if filters.PropertyID != 0 {
				q = q.Where("rooms.property_id = ?", filters.PropertyID)
			}
			if filters.Status != "" {
				q = q.Where("rooms.status = ?", filters.Status)
			}
			var rooms []models.Room
			if err := q.
				Order("rooms.created_at DESC").
				Limit(100).
				Find(&rooms).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rooms, "count": len(rooms)})
		}).
		GET("/rooms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var room models.Room
			if err := db.
				Where(&models.Room{ID: params.ID}).
				Preload("PriceRules").
				First(&room).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": room})
		}).
		GET("/rooms/:id/reservations", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var reservations []models.Reservation
			ss := db.Session(&gorm.Session{PrepareStmt: true})
			if err := ss.
				Where(&models.Reservation{RoomID: params.ID}).
				Where("status IN (?)", booking.ActiveStatuses).
				Order("check_in ASC").
				Limit(100).
				Find(&reservations).
				Error; err != nil {
				log.Printf("Error retrieving reservations for Room [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservations, "count": len(reservations)})
		}).
		PUT("/rooms/:id/maintenance", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := utils.UpdateRoomStatus(params.ID, types.ROOM_MAINTENANCE, types.ROOM_AVAILABLE); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/rooms/:id/restore", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := utils.UpdateRoomStatus(params.ID, types.ROOM_AVAILABLE, types.ROOM_MAINTENANCE); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/pricerules", func(ctx *gin.Context) {
			var body types.CreatePriceRuleRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := utils.CreateNewPriceRule(ctx, &body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		GET("/rooms/:id/pricerules", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var rules []models.PriceRule
			if err := db.
				Where(&models.PriceRule{RoomID: params.ID}).
				Order("start_date ASC").
				Find(&rules).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rules, "count": len(rules)})
		})
	return g
}
