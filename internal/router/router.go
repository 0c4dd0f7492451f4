// Package router wires HTTP routes to their handlers and applies the
// authentication and role middleware each group requires.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edustack/tutor-platform/internal/config"
	"github.com/edustack/tutor-platform/internal/handler"
	"github.com/edustack/tutor-platform/internal/middleware"
)

// Handlers groups everything the route table needs.
type Handlers struct {
	Auth      *handler.AuthHandler
	Tenants   *handler.TenantHandler
	Users     *handler.UserHandler
	Documents *handler.DocumentHandler
	Uploads   *handler.UploadHandler
}

// Register sets up the full route table on e. Unauthenticated endpoints are
// the health check, metrics, static uploads and /api/auth; everything else
// sits behind JWT auth with per-route role gates.
func Register(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Static(cfg.UploadPath, cfg.UploadDir)

	auth := e.Group("/api/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/send-otp", h.Auth.SendCode)
	auth.POST("/verify-otp", h.Auth.VerifyCode)

	// Tenant registry is an administrator-only surface; every tenant read is
	// additionally scoped to its creator inside the service.
	tenants := e.Group("/api/tenants", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("admin"))
	tenants.POST("", h.Tenants.Create)
	tenants.GET("", h.Tenants.List)
	tenants.GET("/:id", h.Tenants.Get)
	tenants.PUT("/:id", h.Tenants.Update)
	tenants.DELETE("/:id", h.Tenants.Delete)

	users := e.Group("/api/user", middleware.JWTAuth(cfg.JWTSecret))
	users.POST("/tutor", h.Users.CreateTutor, middleware.RequireRole("admin"))
	users.POST("/student", h.Users.CreateStudent, middleware.RequireRole("tutor"))
	users.PUT("/update", h.Users.UpdateProfile)
	users.PUT("/admin-update/:id", h.Users.AdminUpdate, middleware.RequireRole("admin"))
	users.PUT("/student-update/:id", h.Users.StudentUpdate, middleware.RequireRole("tutor", "admin"))
	users.DELETE("/remove", h.Users.RemoveSelf)
	users.DELETE("/admin-remove/:id", h.Users.AdminRemove, middleware.RequireRole("admin"))
	users.GET("/find", h.Users.Find)
	users.GET("/user/:id", h.Users.GetByID)
	users.GET("/students", h.Users.Students, middleware.RequireRole("tutor", "admin"))
	users.GET("/all", h.Users.All)

	// Documents are authored by tutors; visibility for students is derived
	// through the uploader's tenant, so creation stays tutor-only.
	docs := e.Group("/api/documents", middleware.JWTAuth(cfg.JWTSecret))
	docs.GET("/types", h.Documents.Types)
	docs.POST("", h.Documents.Create, middleware.RequireRole("tutor"))
	docs.GET("", h.Documents.List)
	docs.GET("/:id", h.Documents.Get)
	docs.PUT("/:id", h.Documents.Update, middleware.RequireRole("admin"))
	docs.DELETE("/:id", h.Documents.Delete, middleware.RequireRole("admin"))

	upload := e.Group("/api/upload", middleware.JWTAuth(cfg.JWTSecret))
	upload.POST("/image", h.Uploads.Image)
}
