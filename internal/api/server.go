// Package api exposes the match engine over HTTP: compatibility preview,
// on-demand generation, swipe actions, the daily feed and the admin sweep
// trigger.
package api

import (
	"context"
	"errors"
	"net/http"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/matching/generator"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compatibility scores one resolved pair.
type Compatibility interface {
	Calculate(ctx context.Context, opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) (*models.CompatibilityResult, error)
}

// ProfileReader resolves the snapshots behind a preview request.
type ProfileReader interface {
	GetOpening(ctx context.Context, id string) (*models.OpeningSnapshot, error)
	GetBuilderProfile(ctx context.Context, userID string) (*models.BuilderSnapshot, error)
}

// CandidateGenerator produces ranked candidate lists on demand.
type CandidateGenerator interface {
	ForOpening(ctx context.Context, openingID string, opts generator.Options) ([]*generator.RankedCandidate, error)
	ForBuilder(ctx context.Context, builderUserID string, opts generator.Options) ([]*generator.RankedCandidate, error)
}

// ActionRecorder applies swipe actions.
type ActionRecorder interface {
	RecordAction(ctx context.Context, matchID, userID string, action models.MatchAction) (*models.Match, bool, error)
}

// FeedSelector builds per-user feeds.
type FeedSelector interface {
	For(ctx context.Context, userID, role string, limit int) ([]*models.Match, error)
}

// SweepRunner runs one sweep synchronously and reports past runs.
type SweepRunner interface {
	Run(ctx context.Context) (*models.SweepSummary, error)
}

// SweepHistory reads sweep run summaries.
type SweepHistory interface {
	LatestSweepRun(ctx context.Context) (*models.SweepSummary, error)
}

type Server struct {
	echo          *echo.Echo
	compatibility Compatibility
	profiles      ProfileReader
	generator     CandidateGenerator
	actions       ActionRecorder
	feed          FeedSelector
	sweeper       SweepRunner
	sweepHistory  SweepHistory
	matching      config.MatchingConfig
	logger        logger.Logger
}

func NewServer(
	compat Compatibility,
	profiles ProfileReader,
	gen CandidateGenerator,
	act ActionRecorder,
	feed FeedSelector,
	sweeper SweepRunner,
	history SweepHistory,
	matching config.MatchingConfig,
	log logger.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:          e,
		compatibility: compat,
		profiles:      profiles,
		generator:     gen,
		actions:       act,
		feed:          feed,
		sweeper:       sweeper,
		sweepHistory:  history,
		matching:      matching,
		logger:        log.WithFields(map[string]interface{}{"component": "api"}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api/v1")
	api.POST("/compatibility/preview", s.handlePreview)
	api.POST("/openings/:id/generate", s.handleGenerateForOpening)
	api.POST("/builders/:id/generate", s.handleGenerateForBuilder)
	api.POST("/matches/:id/action", s.handleAction)
	api.GET("/users/:id/feed", s.handleFeed)

	admin := api.Group("/admin")
	admin.POST("/sweep", s.handleRunSweep)
	admin.GET("/sweep/latest", s.handleLatestSweep)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(port string) error {
	return s.echo.Start(":" + port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// jsonError maps the engine error taxonomy onto HTTP statuses.
func (s *Server) jsonError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case engerr.IsNotFound(err):
		status = http.StatusNotFound
	case engerr.IsInvalidInput(err):
		status = http.StatusBadRequest
	case engerr.IsForbidden(err):
		status = http.StatusForbidden
	}

	body := map[string]interface{}{"error": err.Error()}
	var ee *engerr.EngineError
	if errors.As(err, &ee) {
		body["code"] = ee.Code
		body["error"] = ee.Message
		if ee.Details != "" {
			body["details"] = ee.Details
		}
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.Path(),
			"error": err,
		})
	}
	return c.JSON(status, body)
}
