package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nick/grantlink/internal/models"
)

type matchGrantsRequest struct {
	Emails []string `json:"emails,omitempty"`
	Terms  []string `json:"terms,omitempty"`
}

func (s *Server) handleMatchGrants(c echo.Context) error {
	var req matchGrantsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	ctx := c.Request().Context()

	var profiles []models.Profile
	if len(req.Emails) > 0 {
		for _, email := range req.Emails {
			p, err := s.Store.GetProfileByEmail(ctx, email)
			if err != nil {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found: " + email})
			}
			profiles = append(profiles, *p)
		}
	} else {
		all, err := s.Store.ListProfilesForMatching(ctx, "")
		if err != nil {
			c.Logger().Errorf("listing profiles failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profiles"})
		}
		profiles = all
	}

	if len(profiles) == 0 {
		return c.JSON(http.StatusOK, map[string]string{"message": "No profiles to match"})
	}

	stats, err := s.Pipeline.Run(ctx, profiles, req.Terms)
	if err != nil {
		c.Logger().Errorf("match run failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Matching complete",
		"stats":   stats,
	})
}

func (s *Server) handleSendNotifications(c echo.Context) error {
	frequency := c.QueryParam("frequency")
	if frequency != "" && !models.IsValidNotificationFrequency(frequency) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown notification frequency"})
	}

	stats, err := s.Dispatcher.Dispatch(c.Request().Context(), frequency)
	if err != nil {
		c.Logger().Errorf("notification sweep failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Notification sweep complete",
		"stats":   stats,
	})
}

// handleCronDaily matches daily profiles and sends their digests in one
// pass, meant to be hit by a platform scheduler.
func (s *Server) handleCronDaily(c echo.Context) error {
	if !s.cronAuthorized(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()

	profiles, err := s.Store.ListProfilesForMatching(ctx, "daily")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profiles"})
	}

	resp := map[string]interface{}{"message": "Daily cron complete"}

	if len(profiles) > 0 {
		matchStats, err := s.Pipeline.Run(ctx, profiles, nil)
		if err != nil {
			c.Logger().Errorf("cron match run failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		resp["match_stats"] = matchStats
	}

	notifyStats, err := s.Dispatcher.Dispatch(ctx, "daily")
	if err != nil {
		c.Logger().Errorf("cron notification sweep failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	resp["notify_stats"] = notifyStats

	return c.JSON(http.StatusOK, resp)
}
