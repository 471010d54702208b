package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nick/grantlink/internal/db"
	"github.com/nick/grantlink/internal/models"
)

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".") && !strings.ContainsAny(email, " \t")
}

func (s *Server) handleUpsertProfile(c echo.Context) error {
	var req models.Profile
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A valid email is required"})
	}
	if req.OrganizationType != "" && !models.IsValidOrganizationType(req.OrganizationType) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown organization type"})
	}
	for _, area := range req.FocusAreas {
		if !models.IsValidFocusArea(area) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown focus area: " + area})
		}
	}
	req.State = strings.ToUpper(strings.TrimSpace(req.State))
	if req.State != "" && !models.IsValidState(req.State) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown state: " + req.State})
	}
	for _, src := range req.PreferredSources {
		if !models.IsValidSource(src) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown source: " + string(src)})
		}
	}
	if req.GrantSizeRange != "" {
		rng := models.GrantSizeRangeByValue(req.GrantSizeRange)
		if rng == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown grant size range: " + req.GrantSizeRange})
		}
		if rng.Min > 0 {
			min := rng.Min
			req.MinAmount = &min
		}
		req.MaxAmount = rng.Max
	}
	if req.NotificationFrequency == "" {
		req.NotificationFrequency = "weekly"
	}
	if !models.IsValidNotificationFrequency(req.NotificationFrequency) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown notification frequency"})
	}

	stored, err := s.Store.UpsertProfile(c.Request().Context(), req)
	if err != nil {
		c.Logger().Errorf("upsert profile failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save profile"})
	}

	return c.JSON(http.StatusOK, stored)
}

func (s *Server) handleGetProfile(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email parameter is required"})
	}

	profile, err := s.Store.GetProfileByEmail(c.Request().Context(), email)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
	}
	if err != nil {
		c.Logger().Errorf("get profile failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}

	return c.JSON(http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email parameter is required"})
	}

	err := s.Store.DeleteProfile(c.Request().Context(), email)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
	}
	if err != nil {
		c.Logger().Errorf("delete profile failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete profile"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListMatches(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email parameter is required"})
	}

	profile, err := s.Store.GetProfileByEmail(c.Request().Context(), email)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}

	limit := 50
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	matches, err := s.Store.ListMatches(c.Request().Context(), profile.ID, c.QueryParam("status"), limit)
	if err != nil {
		c.Logger().Errorf("list matches failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load matches"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"matches": matches,
		"total":   len(matches),
	})
}
