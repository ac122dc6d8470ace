package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Files      int                        `json:"files" doc:"Number of cataloged audio files"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	catalog, files := s.checkCatalog(ctx)

	return &HealthOutput{
		Body: HealthResponse{
			Status:     catalog.Status,
			Files:      files,
			Components: map[string]ComponentHealth{"catalog": catalog},
		},
	}, nil
}

// checkCatalog verifies the catalog answers a count query.
func (s *Server) checkCatalog(ctx context.Context) (ComponentHealth, int) {
	if s.store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "catalog not configured",
		}, 0
	}

	start := time.Now()
	count, err := s.store.CountFiles(ctx)
	latency := time.Since(start)

	if err != nil {
		s.logger.Warn("catalog health check failed", "error", err)
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "catalog read failed",
		}, 0
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}, count
}
