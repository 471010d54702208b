package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nick/grantlink/internal/aggregate"
	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/sources"
)

func (s *Server) handleSearch(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q parameter is required"})
	}

	opts := aggregate.Options{
		Agency: c.QueryParam("agency"),
		State:  c.QueryParam("state"),
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		opts.Page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 && v <= 100 {
		opts.PageSize = v
	}

	if raw := c.QueryParam("sources"); raw != "" {
		for _, id := range splitCSV(raw) {
			if models.IsValidSource(models.Source(id)) {
				opts.Sources = append(opts.Sources, models.Source(id))
			}
		}
	}
	if category := c.QueryParam("category"); category != "" && len(opts.Sources) == 0 {
		opts.Sources = aggregate.SourcesInCategory(category)
		if len(opts.Sources) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown category"})
		}
	}

	result, err := s.Agg.Search(c.Request().Context(), q, opts)
	if err != nil {
		if err == aggregate.ErrEmptyKeyword {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "q parameter is required"})
		}
		c.Logger().Errorf("search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	aggregate.SortOpportunities(result.Opportunities, c.QueryParam("sort"), q, time.Now())

	return c.JSON(http.StatusOK, result)
}

// sourceStatus is one entry in the /status report.
type sourceStatus struct {
	Source     models.Source `json:"source"`
	Label      string        `json:"label"`
	Configured bool          `json:"configured"`
	OK         *bool         `json:"ok,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func (s *Server) handleStatus(c echo.Context) error {
	probe := c.QueryParam("test") == "true"

	statuses := make([]sourceStatus, 0, len(s.Agg.Sources()))
	for _, src := range s.Agg.Sources() {
		st := sourceStatus{Source: src, Label: models.SourceLabels[src], Configured: true}

		// Keyed sources report unconfigured instead of failing a probe.
		switch src {
		case models.SourceSamGov:
			st.Configured = s.Cfg.SamGovAPIKey != ""
		case models.SourceRegulations:
			st.Configured = s.Cfg.RegulationsGovAPIKey != ""
		}

		if probe && st.Configured {
			ok := s.probeSource(c.Request().Context(), src, &st)
			st.OK = &ok
		}
		statuses = append(statuses, st)
	}

	resp := map[string]interface{}{
		"sources": statuses,
		"db":      s.DB != nil,
	}
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		resp["db"] = s.DB.Ping(ctx) == nil
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) probeSource(ctx context.Context, src models.Source, st *sourceStatus) bool {
	client := s.Agg.Client(src)
	if client == nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := client.Search(probeCtx, sources.Query{Keyword: "education", PageSize: 1})
	if err != nil {
		st.Error = err.Error()
		return false
	}
	return true
}
