// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"vportfolio/portfolio-api/db"
	"vportfolio/portfolio-api/middleware"
	"vportfolio/portfolio-api/service"
	"vportfolio/portfolio-api/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Store  storage.Storage

	Sessions  *service.Sessions
	Files     *service.Files
	Reactions *service.Reactions
	Users     *service.Users
}

// NewRouter wires the full application from config: database, storage
// backend, logger and routes.
func NewRouter() (*API, error) {
	d, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	store, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage backend, %w", err)
	}

	makeLogger()

	return New(d, store), nil
}

// New builds the API around an already-open database and storage
// backend. Tests use this directly.
func New(d *gorm.DB, store storage.Storage) *API {
	a := &API{
		DB:        d,
		Store:     store,
		Sessions:  service.NewSessions(d, store),
		Files:     service.NewFiles(d, store),
		Reactions: service.NewReactions(d),
		Users:     service.NewUsers(d),
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	auth := middleware.NewAuthMiddleware(d)
	admin := middleware.RequireAdmin()
	maxUploadSize := viper.GetInt64("upload.max_size")
	cacheStore := persist.NewMemoryStore(time.Minute)

	cacheFor := func(sec int) gin.HandlerFunc {
		return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
	}

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates the auth cookie
		main.HEAD("/validate", auth, a.Validate)

		// GET /api/reactions		-> Lists every like counter for the admin dashboard
		main.GET("/reactions", auth, admin, a.ReactionFetchBulk)
	}

	sessions := main.Group("/sessions")
	{
		// POST /api/sessions			-> Creates a new session (album)
		sessions.POST("", middleware.BodySizeLimiter(1<<20), a.SessionCreate)

		// GET /api/sessions			-> Lists sessions with file counts and likes
		sessions.GET("", cacheFor(30), a.SessionFetchBulk)

		// GET /api/sessions/:id		-> Returns one session with its files
		sessions.GET("/:id", a.SessionFetch)

		// PUT /api/sessions/:id		-> Partially updates a session
		sessions.PUT("/:id", auth, admin, a.SessionUpdate)

		// DELETE /api/sessions/:id		-> Deletes a session and everything it owns
		sessions.DELETE("/:id", auth, admin, a.SessionDelete)

		// POST /api/sessions/reorder		-> Applies a new session display order
		sessions.POST("/reorder", auth, admin, a.SessionReorder)

		// POST /api/sessions/:id/files/reorder	-> Applies a new file order inside a session
		sessions.POST("/:id/files/reorder", auth, admin, a.SessionReorderFiles)

		// POST /api/sessions/:id/like		-> Increments the like counter
		sessions.POST("/:id/like", a.ReactionLike)

		// GET /api/sessions/:id/likes		-> Returns the like counter
		sessions.GET("/:id/likes", a.ReactionFetch)

		// DELETE /api/sessions/:id/likes	-> Resets the like counter to zero
		sessions.DELETE("/:id/likes", auth, admin, a.ReactionReset)
	}

	files := main.Group("/files")
	{
		// GET /api/files			-> Lists files, optionally scoped to one session
		files.GET("", a.FileFetchBulk)

		// GET /api/files/:id/raw		-> Serves the stored binary
		files.GET("/:id/raw", a.FileServe)

		// POST /api/files			-> Uploads a new binary into a session
		files.POST("", middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// DELETE /api/files/:id		-> Deletes a file and its binary
		files.DELETE("/:id", auth, admin, a.FileDelete)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/users			-> Registers a new account (admin only)
		users.POST("", auth, admin, a.UserRegister)

		// GET /api/users			-> Lists accounts, scoped by the actor's role
		users.GET("", auth, a.UserFetchBulk)

		// PUT /api/users/:id/password		-> Changes an account password
		users.PUT("/:id/password", auth, a.UserPassword)

		// DELETE /api/users/:id		-> Deletes an account
		users.DELETE("/:id", auth, admin, a.UserDelete)
	}

	authGroup := main.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/login			-> Logs in and sets the auth cookie
		authGroup.POST("/login", a.UserLogin)

		// POST /api/auth/logout		-> Clears the auth cookie
		authGroup.POST("/logout", auth, a.UserLogout)
	}

	return a
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
