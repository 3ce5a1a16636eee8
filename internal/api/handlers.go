package api

import (
	"net/http"
	"strconv"

	"match-engine/internal/matching/generator"
	"match-engine/internal/models"

	"github.com/labstack/echo/v4"
)

type previewRequest struct {
	OpeningID string `json:"openingId"`
	BuilderID string `json:"builderId"`
}

type actionRequest struct {
	UserID string             `json:"userId"`
	Action models.MatchAction `json:"action"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handlePreview scores one stored pair without persisting anything. Both
// snapshots are resolved through the profile store, so previews see the same
// cached reads as generation.
func (s *Server) handlePreview(c echo.Context) error {
	var req previewRequest
	if err := decodeAndValidate(c.Request().Body, previewRequestSchema, &req); err != nil {
		return s.jsonError(c, err)
	}

	ctx := c.Request().Context()
	opening, err := s.profiles.GetOpening(ctx, req.OpeningID)
	if err != nil {
		return s.jsonError(c, err)
	}
	builder, err := s.profiles.GetBuilderProfile(ctx, req.BuilderID)
	if err != nil {
		return s.jsonError(c, err)
	}

	result, err := s.compatibility.Calculate(ctx, opening, builder)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGenerateForOpening(c echo.Context) error {
	ranked, err := s.generator.ForOpening(c.Request().Context(), c.Param("id"), s.generateOptions(c))
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":      len(ranked),
		"candidates": ranked,
	})
}

func (s *Server) handleGenerateForBuilder(c echo.Context) error {
	ranked, err := s.generator.ForBuilder(c.Request().Context(), c.Param("id"), s.generateOptions(c))
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":    len(ranked),
		"openings": ranked,
	})
}

// generateOptions reads limit and minScore overrides off the query string,
// falling back to the configured interactive defaults.
func (s *Server) generateOptions(c echo.Context) generator.Options {
	opts := generator.Options{
		Limit:    s.matching.DefaultLimit,
		MinScore: s.matching.MinScore,
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 500 {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("minScore")); err == nil && v >= 0 && v <= 100 {
		opts.MinScore = v
	}
	return opts
}

func (s *Server) handleAction(c echo.Context) error {
	var req actionRequest
	if err := decodeAndValidate(c.Request().Body, actionRequestSchema, &req); err != nil {
		return s.jsonError(c, err)
	}

	match, newlyMutual, err := s.actions.RecordAction(c.Request().Context(), c.Param("id"), req.UserID, req.Action)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"match":       match,
		"newlyMutual": newlyMutual,
	})
}

func (s *Server) handleFeed(c echo.Context) error {
	limit := 0
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		limit = v
	}

	matches, err := s.feed.For(c.Request().Context(), c.Param("id"), c.QueryParam("role"), limit)
	if err != nil {
		return s.jsonError(c, err)
	}
	if matches == nil {
		matches = []*models.Match{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   len(matches),
		"matches": matches,
	})
}

// handleRunSweep runs one sweep synchronously. Meant for operators; the
// nightly schedule triggers the same code path through cron.
func (s *Server) handleRunSweep(c echo.Context) error {
	sum, err := s.sweeper.Run(c.Request().Context())
	if err != nil {
		if sum != nil {
			// Partial run: report what happened alongside the error.
			return c.JSON(http.StatusOK, map[string]interface{}{
				"summary": sum,
				"error":   err.Error(),
			})
		}
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"summary": sum})
}

func (s *Server) handleLatestSweep(c echo.Context) error {
	sum, err := s.sweepHistory.LatestSweepRun(c.Request().Context())
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}
