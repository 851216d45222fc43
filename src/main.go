package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hbs/src/boot"
	"hbs/src/config"
	"hbs/src/controllers"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/middlewares"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/grokify/go-pkce"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

// staydate validates a stay boundary: parseable and not in the past.
var staydateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	parsed, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !parsed.Before(today)
}

var gtdate validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	parsed, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	fieldValue, ok := field.Interface().(string)
	if !ok {
		return false
	}
	other, err := time.Parse(config.DATE_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	return !other.After(parsed)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err != nil || atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)

	oauthcb := apiv1.Group("/oauth")
	oauthcb.
		GET("/google/callback", func(ctx *gin.Context) {
			var query struct {
				State    *string `form:"state" binding:"required"`
				Code     *string `form:"code" binding:"required"`
				Scope    *string `form:"scope" binding:"required"`
				AuthUser int     `form:"authuser"`
				Prompt   string  `form:"prompt"`
			}
			if err := ctx.BindQuery(&query); err != nil {
				log.Printf("Error while parsing request params: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			// Decrypt state
			key, err := hex.DecodeString(config.API_SECRET)
			if err != nil {
				log.Printf("Error while retrieving key: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			dec, err := utils.DecryptMessage(key, *query.State)
			if err != nil {
				log.Printf("Error while decrypting message: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			var state types.Oauth2FlowState
			if err := json.Unmarshal([]byte(*dec), &state); err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			db := db.GetDb()
			var uc int64
			if err := db.Model(&models.User{}).Where("id = ?", state.AccountID).Count(&uc).Error; err != nil {
				log.Printf("Error retrieving user info: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if uc == 0 {
				err := fmt.Errorf("could not find user with ID [%d]", state.AccountID)
				log.Printf("Error verifying user: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			// Decode nonce
			dnonce, err := hex.DecodeString(state.Nonce)
			if err != nil {
				log.Printf("Could not read nonce: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			// Read generated nonce
			rd := lib.GetRedisClient()
			nonceKey := fmt.Sprintf("user::%d:oauth:nonce", state.AccountID)
			cache := rd.Get(context.Background(), nonceKey).Val()
			nonce, err := hex.DecodeString(cache)
			if err != nil {
				log.Printf("Error while decoding hex value: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			// Subtle compare
			if subtle.ConstantTimeCompare(dnonce, nonce) != 1 {
				log.Println("Data mismatch: the supplied values do not match")
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied"})
				return
			}
			oauthcfg := &oauth2.Config{
				RedirectURL:  config.API_HOST + "/api/v1/oauth/google/callback",
				ClientID:     config.OAUTH_CLIENT_ID,
				ClientSecret: config.OAUTH_CLIENT_SECRET,
				Scopes:       strings.Split(*query.Scope, " "),
				Endpoint:     google.Endpoint,
			}
			// Create code challenge and verifier
			cv := pkce.NewCodeVerifierBytes(nonce)
			token, err := oauthcfg.Exchange(
				context.Background(),
				*query.Code,
				oauth2.SetAuthURLParam(pkce.ParamCodeVerifier, cv),
			)
			if err != nil {
				log.Printf("Error while exchanging authorization code for token: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			go func() {
				// A dedicated calendar keeps bookings out of the host's
				// personal one.
				md := &types.Metadata{"state": query.State}
				var user models.User
				if err := db.Where(&models.User{ID: state.AccountID}).First(&user).Error; err == nil {
					svc, err := lib.GAPICreateCalendarService(context.Background(), token, oauthcfg)
					if err == nil {
						cal, err := lib.GAPIAddCalendar(fmt.Sprintf("Bookings: %s", user.Name), svc)
						if err == nil {
							(*md)["calendarId"] = cal.Id
						} else {
							log.Printf("Failed to create Calendar for [%s]: %s\n", user.Name, err.Error())
						}
					} else {
						log.Printf("Failed to create Calendar service: %s\n", err.Error())
					}
				}
				t := &models.Token{
					RequestedBy:   state.AccountID,
					RequesterType: state.AccountType,
					Type:          models.TokenTypeAccess,
					TokenName:     "calendar_token",
					TokenValue: types.JSONB{
						"access_token":  token.AccessToken,
						"refresh_token": token.RefreshToken,
						"exp":           token.Expiry,
						"ttl":           token.ExpiresIn,
					},
					TTL:      uint(token.ExpiresIn),
					Status:   "active",
					Metadata: md,
				}
				tx := db.Begin()
				if err := tx.Model(&models.Token{}).Where(&models.Token{
					Type:          models.TokenTypeAccess,
					TokenName:     "calendar_token",
					RequestedBy:   state.AccountID,
					RequesterType: state.AccountType,
					Status:        "active",
				}).Update("status", "invalid").Error; err != nil {
					log.Printf("Error invalidating tokens: %s\n", err.Error())
					tx.Rollback()
					return
				}
				if err := tx.Create(t).Error; err != nil {
					log.Printf("Error saving token to database: %s\n", err.Error())
					tx.Rollback()
					return
				}
				tx.Commit()
			}()
			ex := time.Duration(token.ExpiresIn) * time.Second
			go rd.SetEx(context.Background(), fmt.Sprintf("user::%d:calendar:token", state.AccountID), token.AccessToken, ex)
			go rd.Del(context.Background(), nonceKey)
			ctx.Redirect(http.StatusTemporaryRedirect, state.Redirect)
		})
	return apiv1
}

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	guest := apiv1.Group("/auth")
	guest.Use(middlewares.VerifyIdToken)
	guest.
		POST("/login", func(ctx *gin.Context) {
			token, status, err := controllers.AuthLogin(ctx)
			if err != nil {
				log.Printf("[AuthLogin] error: %s\n", err.Error())
				ctx.Status(status)
				return
			}

			ctx.JSON(http.StatusOK, gin.H{
				"token": token,
			})
		}).
		POST("/register", func(ctx *gin.Context) {
			uid, status, err := controllers.AuthRegister(ctx)
			if err != nil {
				log.Printf("[AuthRegister] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{"uid": uid})
		})
	return guest
}

// calendarRoutes lets a host start the Google Calendar OAuth flow.
func calendarRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/accounts/calendar/connect", func(ctx *gin.Context) {
			var body struct {
				Redirect string `json:"redirect" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}

			userId := ctx.GetUint("id")
			oauthcfg := &oauth2.Config{
				RedirectURL:  config.API_HOST + "/api/v1/oauth/google/callback",
				ClientID:     config.OAUTH_CLIENT_ID,
				ClientSecret: config.OAUTH_CLIENT_SECRET,
				Scopes: []string{
					"https://www.googleapis.com/auth/calendar",
					"https://www.googleapis.com/auth/calendar.events",
				},
				Endpoint: google.Endpoint,
			}
			// Generate nonce
			nonce := make([]byte, 32)
			rand.Read(nonce)
			hnonce := hex.EncodeToString(nonce)
			go func() {
				ex := 3600 * time.Second
				rd := lib.GetRedisClient()
				rd.SetEx(
					context.Background(),
					fmt.Sprintf("user::%d:oauth:nonce", userId),
					hnonce,
					ex,
				)
			}()

			// Create code challenge and verifier
			cv := pkce.NewCodeVerifierBytes(nonce)
			cc := pkce.CodeChallengeS256(cv)

			// Build state
			state := &types.Oauth2FlowState{
				AccountID:   userId,
				AccountType: "user",
				Nonce:       hnonce,
				Redirect:    body.Redirect,
			}
			b, err := json.Marshal(state)
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			keyBytes, err := hex.DecodeString(config.API_SECRET)
			if err != nil {
				log.Printf("Error while reading secret key: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			enc, err := utils.EncryptMessage(keyBytes, string(b))
			if err != nil {
				log.Printf("Error while encrypting message: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			authurl := oauthcfg.AuthCodeURL(
				enc,
				oauth2.AccessTypeOffline,
				oauth2.SetAuthURLParam(pkce.ParamCodeChallenge, cc),
				oauth2.SetAuthURLParam(pkce.ParamCodeChallengeMethod, pkce.MethodS256),
			)
			ctx.JSON(http.StatusOK, gin.H{"url": authurl})
		})
	return g
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()
	go boot.InitBroker()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "x-secret")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			if match {
				return true
			}
			match, _ = regexp.MatchString("app:mobile", origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("staydate", staydateValidatorFunc)
		v.RegisterValidation("gtdate", gtdate)
	}

	router = maintenanceModeMiddleware(router)

	publicRoutes(router)

	availabilityRoutes(router)

	guestAuthRoutes(router)

	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = orderHandlers(authorized)
		authorized = reviewHandlers(authorized)
		authorized = promotionPreviewHandlers(authorized)

		authorized.
			POST("/auth/logout", func(ctx *gin.Context) {
				db := db.GetDb()
				if err := db.Transaction(func(tx *gorm.DB) error {
					userId := ctx.GetUint("id")
					err := tx.Model(&models.User{}).Where(userId).Update("last_active", time.Now()).Error
					if err != nil {
						return err
					}
					return nil
				}); err != nil {
					log.Printf("Error on user logout: %s\n", err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				ctx.Status(http.StatusOK)
			}).
			GET("/me", func(ctx *gin.Context) {
				rd := lib.GetRedisClient()
				userId := ctx.GetUint("id")
				cacheKey := fmt.Sprintf("%d:user", userId)
				res := rd.JSONGet(context.Background(), cacheKey).Val()
				if res == "" {
					log.Printf("content not found [%s]\n", cacheKey)
					db := db.GetDb()
					var muser models.User
					if err := db.
						Model(&models.User{}).
						Select("id", "name", "email", "phone", "role").
						Where(&models.User{ID: userId}).
						First(&muser).
						Error; err != nil {
						log.Printf("error: %s\n", err.Error())
						ctx.JSON(http.StatusNotFound, gin.H{"error": "No user account is associated with this session"})
						return
					}
					go func() {
						rd := lib.GetRedisClient()
						if _, err := rd.JSONSet(context.Background(), cacheKey, "$", &muser).Result(); err != nil {
							log.Printf("[redis] Error updating user cache: %s\n", err.Error())
						}
					}()
					ctx.JSON(http.StatusOK, gin.H{"data": &muser})
					return
				}
				var user models.User
				if err := json.Unmarshal([]byte(res), &user); err != nil {
					log.Printf("Error on json unmarshal: %s\n", err.Error())
					ctx.Status(http.StatusBadRequest)
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": &user})
			}).
			POST("/settings", func(ctx *gin.Context) {
				var body types.CreateSettingRequestBody
				err := ctx.ShouldBindJSON(&body)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				db := db.GetDb()
				err = db.Transaction(func(tx *gorm.DB) error {
					setting := models.Setting{
						SettingKey:   body.Key,
						SettingValue: body.Value,
						Group:        body.Group,
					}
					err := tx.Create(&setting).Error
					if err != nil {
						return err
					}
					return nil
				})
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				ctx.Status(http.StatusOK)
			}).
			GET("/settings", func(ctx *gin.Context) {
				var settings []models.Setting
				db := db.GetDb()
				err := db.Find(&settings).Error
				if err != nil {
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": settings})
			})
	}

	host := router.Group(apiPrefix)
	host.Use(middlewares.AuthMiddleware)
	host.Use(middlewares.HostMiddleware)
	{
		host = propertyHandlers(host)
		host = roomHandlers(host)
		host = promotionHandlers(host)
		host = hostOrderHandlers(host)
		host = uploadHandlers(host)
		host = calendarRoutes(host)
	}

	if os.Getenv("TLS_ENABLE") == "true" {
		cwd, _ := os.Getwd()
		certpath := path.Join(cwd, "certificates", "localhost.pem")
		keypath := path.Join(cwd, "certificates", "localhost-key.pem")
		if err := router.RunTLS(":9090", certpath, keypath); err != nil {
			log.Fatalf("Failed to start server: %s", err)
		}
	}
	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
