// Package api exposes the HTTP surface: search, profiles, matches,
// notifications, templates, leads, and operational endpoints.
package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nick/grantlink/internal/aggregate"
	"github.com/nick/grantlink/internal/ai"
	"github.com/nick/grantlink/internal/auth"
	"github.com/nick/grantlink/internal/config"
	"github.com/nick/grantlink/internal/db"
	"github.com/nick/grantlink/internal/match"
	"github.com/nick/grantlink/internal/notify"
)

type Server struct {
	Store      *db.Store
	Agg        *aggregate.Aggregator
	Pipeline   *match.Pipeline
	Dispatcher *notify.Dispatcher
	AI         ai.Generator
	Echo       *echo.Echo
	DB         *pgxpool.Pool
	Cfg        *config.AppConfig
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, cfg *config.AppConfig, agg *aggregate.Aggregator) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.CORSOrigins != "" {
		for _, o := range strings.Split(cfg.CORSOrigins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret", "X-Cron-Secret"},
	}))

	store := db.NewStore(pool)

	s := &Server{
		Store:      store,
		Agg:        agg,
		Pipeline:   match.NewPipeline(agg, store),
		Dispatcher: &notify.Dispatcher{Store: store, Sender: notify.NewResendSender(cfg.ResendAPIKey, cfg.FromEmail), BaseURL: cfg.BaseURL},
		AI:         ai.NewOllamaClient(cfg.TemplateBaseURL, cfg.TemplateModel),
		Echo:       e,
		DB:         pool,
		Cfg:        cfg,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	api.GET("/search", s.handleSearch)
	api.GET("/status", s.handleStatus)

	api.GET("/profile", s.handleGetProfile)
	api.POST("/profile", s.handleUpsertProfile)
	api.DELETE("/profile", s.handleDeleteProfile)
	api.GET("/matches", s.handleListMatches)

	api.POST("/leads", s.handleCreateLead)
	api.POST("/templates", s.handleGenerateTemplate, auth.Middleware)

	// Admin Routes
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/match-grants", s.handleMatchGrants)
	admin.POST("/notifications/send", s.handleSendNotifications)

	api.GET("/cron/daily", s.handleCronDaily)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

// splitCSV splits a comma-separated query parameter into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret(s.Cfg.AdminSecret)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

// adminSecret returns the configured secret, or a process-lifetime
// random fallback when none is configured.
func adminSecret(configured string) (string, error) {
	if secret := strings.TrimSpace(configured); secret != "" {
		return secret, nil
	}

	adminSecretOnce.Do(func() {
		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}

// cronAuthorized accepts the cron secret from X-Cron-Secret or a Bearer
// token. With no CRON_SECRET configured the admin secret works too.
func (s *Server) cronAuthorized(c echo.Context) bool {
	provided := c.Request().Header.Get("X-Cron-Secret")
	if provided == "" {
		authHeader := c.Request().Header.Get("Authorization")
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			provided = authHeader[7:]
		}
	}
	if provided == "" {
		return false
	}

	if s.Cfg.CronSecret != "" {
		return provided == s.Cfg.CronSecret
	}
	secret, err := adminSecret(s.Cfg.AdminSecret)
	return err == nil && provided == secret
}
