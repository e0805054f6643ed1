package router

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"quantumvision/internal/config"
	"quantumvision/internal/handler"
	"quantumvision/internal/middleware"
	"quantumvision/internal/model"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Video    *handler.VideoHandler
	Vote     *handler.VoteHandler
	Admin    *handler.AdminHandler
	Realtime http.Handler

	Authenticator *middleware.Authenticator
	VoteLimiter   *middleware.RateLimiter
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, h Handlers) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/ws/votes", echo.WrapHandler(h.Realtime))
	e.Static(cfg.UploadURLPrefix, cfg.UploadDir)

	api := e.Group("/api")
	secured := h.Authenticator.Middleware()

	// Auth
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout, secured)
	api.GET("/auth/verify", h.Auth.Verify, secured)

	api.GET("/users/profile", h.User.Profile, secured)

	// Catalogue
	uploadLimit := echomw.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB*3))
	api.GET("/videos", h.Video.List)
	api.GET("/videos/featured", h.Video.Featured)
	api.GET("/videos/category/:category", h.Video.ListByCategory)
	api.GET("/videos/my-videos", h.Video.Mine, secured)
	api.GET("/videos/:id", h.Video.Get)
	api.POST("/videos/upload", h.Video.Upload, uploadLimit, secured, middleware.RequireRole(model.RoleAgent))
	api.PUT("/videos/:id", h.Video.Update, uploadLimit, secured)
	api.DELETE("/videos/:id", h.Video.Delete, secured)

	// Voting
	voteMW := []echo.MiddlewareFunc{secured}
	if h.VoteLimiter != nil {
		voteMW = append(voteMW, h.VoteLimiter.Middleware())
	}
	api.POST("/videos/:id/vote", h.Vote.Cast, voteMW...)
	api.GET("/votes/eligibility", h.Vote.Eligibility, secured)
	api.GET("/votes/history", h.Vote.History, secured)
	api.GET("/votes/packs", h.Vote.Packs)
	api.POST("/votes/purchase", h.Vote.Purchase, secured)
	api.GET("/votes/purchases", h.Vote.Purchases, secured)

	// Moderation
	admin := api.Group("/admin", secured, middleware.RequireRole(model.RoleAdmin))
	admin.PATCH("/videos/:id/status", h.Admin.SetVideoStatus)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
