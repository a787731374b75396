package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	httputil "padelhub/pkg/http"
	"padelhub/pkg/logger"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

type HealthHandler struct {
	mongo pingFunc
	redis pingFunc
	log   *logger.Logger
}

type pingFunc func(ctx context.Context) error

func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	h := &HealthHandler{log: log}
	if mongoClient != nil {
		h.mongo = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	}
	if redisClient != nil {
		h.redis = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return h
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

// Ready requires Mongo. Redis is optional and only reported.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ready", Database: "ok"}
	status := http.StatusOK

	if h.mongo == nil {
		resp.Status, resp.Database = "unavailable", "not configured"
		status = http.StatusServiceUnavailable
	} else if err := h.mongo(ctx); err != nil {
		h.log.Error("Database health check failed", "error", err, "path", r.URL.Path)
		resp.Status, resp.Database = "unavailable", "error"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		resp.Cache = "ok"
		if err := h.redis(ctx); err != nil {
			h.log.Warn("Cache health check failed", "error", err)
			resp.Cache = "error"
		}
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
