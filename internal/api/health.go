package api

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type HealthHandler struct {
	mongo   *mongo.Client
	redis   *redis.Client
	env     string
	version string
}

func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, env, version string) *HealthHandler {
	return &HealthHandler{
		mongo:   mongoClient,
		redis:   redisClient,
		env:     env,
		version: version,
	}
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

// Liveness answers the plain-text root probe the original service
// exposed.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("clinic api is running"))
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	mongoCtx, mongoCancel := context.WithTimeout(ctx, 1*time.Second)
	err := h.mongo.Ping(mongoCtx, readpref.Primary())
	mongoCancel()
	if err != nil {
		deps["mongo"] = "down"
		status = "error"
	} else {
		deps["mongo"] = "ok"
	}

	redisCtx, redisCancel := context.WithTimeout(ctx, 1*time.Second)
	err = h.redis.Ping(redisCtx).Err()
	redisCancel()
	if err != nil {
		deps["redis"] = "down"
		if status == "ok" {
			status = "degraded"
		} else {
			status = "error"
		}
	} else {
		deps["redis"] = "ok"
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
