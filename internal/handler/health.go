package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports whether the storage backend answers
type HealthHandler struct {
	store database.Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Check handles GET /v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
		WriteError(w, model.NewServiceUnavailableError("Storage unavailable"))
		return
	}
	WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
