package scoring

import (
	"context"
	"log"
	"net/http"

	"github.com/krishanu7/debate-backend/pkg/httpjson"
)

type HealthChecker interface {
	Health(ctx context.Context) error
}

type MLStatus struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
}

// StatusHandler reports whether the ML API is reachable. It always answers
// 200; an unreachable service is reported in the body.
func StatusHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.Health(r.Context()); err != nil {
			log.Printf("ML API health check failed: %v", err)
			httpjson.Write(w, http.StatusOK, MLStatus{
				Status:  "disconnected",
				Message: "ML API unavailable, fallback scoring in use",
			})
			return
		}
		httpjson.Write(w, http.StatusOK, MLStatus{Status: "connected", Connected: true})
	}
}
