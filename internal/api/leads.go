package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nick/grantlink/internal/ai"
	"github.com/nick/grantlink/internal/auth"
	"github.com/nick/grantlink/internal/models"
)

func (s *Server) handleCreateLead(c echo.Context) error {
	var req models.Lead
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A valid email is required"})
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "First name is required"})
	}

	stored, err := s.Store.InsertLead(c.Request().Context(), req)
	if err != nil {
		c.Logger().Errorf("insert lead failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save signup"})
	}

	token, err := auth.GenerateAccessToken(stored.ID, stored.Email)
	if err != nil {
		c.Logger().Errorf("token generation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to issue access token"})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"lead":  stored,
		"token": token,
	})
}

func (s *Server) handleGenerateTemplate(c echo.Context) error {
	var req ai.TemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.GrantTitle) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "grant_title is required"})
	}

	tmpl, err := s.AI.GenerateTemplate(c.Request().Context(), req)
	if err != nil {
		c.Logger().Errorf("template generation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Template generation failed"})
	}

	return c.JSON(http.StatusOK, tmpl)
}
