package core

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the total time spent on health probes.
const healthCheckTimeout = 2 * time.Second

// HealthProbe is a subsystem health check (database, redis).
type HealthProbe interface {
	Name() string
	Check(ctx context.Context) error
}

type healthComponent struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]healthComponent `json:"components,omitempty"`
}

// HandleHealth runs the registered probes sequentially under a shared
// deadline. Returns 200 when every probe passes, 503 otherwise. Mounted at
// GET /health with no authentication.
func (s *Server) HandleHealth(probes ...HealthProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if len(probes) == 0 {
			JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
			return
		}

		components := make(map[string]healthComponent, len(probes))
		healthy := true
		for _, p := range probes {
			if err := p.Check(ctx); err != nil {
				healthy = false
				components[p.Name()] = healthComponent{Status: "unhealthy", Message: err.Error()}
			} else {
				components[p.Name()] = healthComponent{Status: "healthy"}
			}
		}

		resp := healthResponse{Status: "healthy", Components: components}
		if !healthy {
			resp.Status = "unhealthy"
			JSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
		JSON(w, r, http.StatusOK, resp)
	}
}
