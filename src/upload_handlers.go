package main

import (
	"fmt"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"log"
	"net/http"
	"os"
	"path"

	awslib "hbs/src/lib/aws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// uploadPhoto saves the multipart file locally then pushes it to the media
// bucket. Returns the object key and a presigned URL.
func uploadPhoto(ctx *gin.Context, prefix string) (string, *string, error) {
	file, err := ctx.FormFile("photo")
	if err != nil {
		return "", nil, err
	}
	tempdir := os.Getenv("TEMP_DIR")
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), path.Ext(file.Filename))
	local := path.Join(tempdir, path.Base(key))
	if err := ctx.SaveUploadedFile(file, local); err != nil {
		return "", nil, err
	}
	contentType := file.Header.Get("Content-Type")
	url, err := awslib.S3UploadPhoto(key, local, contentType)
	if err != nil {
		return "", nil, err
	}
	return key, url, nil
}

func appendPhotoKey(keys *types.Metadata, key string) *types.Metadata {
	md := types.Metadata{}
	if keys != nil {
		md = *keys
	}
	existing, _ := md["keys"].([]any)
	md["keys"] = append(existing, key)
	return &md
}

func uploadHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/properties/:id/photos", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var property models.Property
			if err := db.
				Where(&models.Property{ID: params.ID, OwnerID: ownerId}).
				First(&property).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			key, url, err := uploadPhoto(ctx, "properties")
			if err != nil {
				log.Printf("Error uploading photo for property [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Property{}).
					Where(&models.Property{ID: params.ID}).
					Update("photo_keys", appendPhotoKey(property.PhotoKeys, key)).
					Error
			}); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"key": key, "url": url})
		}).
		POST("/rooms/:id/photos", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var room models.Room
			if err := db.
				Where(&models.Room{ID: params.ID}).
				Preload("Property").
				First(&room).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			if room.Property.OwnerID != ownerId {
				ctx.Status(http.StatusNotFound)
				return
			}
			key, url, err := uploadPhoto(ctx, "rooms")
			if err != nil {
				log.Printf("Error uploading photo for room [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Room{}).
					Where(&models.Room{ID: params.ID}).
					Update("photo_keys", appendPhotoKey(room.PhotoKeys, key)).
					Error
			}); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"key": key, "url": url})
		})
	return g
}
