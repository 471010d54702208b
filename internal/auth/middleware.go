package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const LeadIDKey contextKey = "lead_id"

// Middleware validates the access token and adds the lead ID to the context
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
		}

		leadID, email, err := ParseAccessToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Server auth configuration error")
		}

		c.Set(string(LeadIDKey), leadID)
		c.Set("lead_email", email)
		return next(c)
	}
}

// GetLeadIDFromContext helper to retrieve the lead ID
func GetLeadIDFromContext(c echo.Context) (uuid.UUID, error) {
	val := c.Get(string(LeadIDKey))
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("lead ID not found in context")
	}
	return id, nil
}
