package handlers

import (
	"net/http"

	"github.com/ivankudzin/swipematch/internal/services/connections"
	"github.com/ivankudzin/swipematch/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/swipematch/internal/transport/http/errors"
)

type StatsSource interface {
	Stats() connections.Stats
}

type HealthHandler struct {
	stats StatsSource
}

func NewHealthHandler(stats StatsSource) *HealthHandler {
	return &HealthHandler{stats: stats}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, _ *http.Request) {
	resp := dto.HealthResponse{OK: true}
	if h.stats != nil {
		s := h.stats.Stats()
		resp.Connections = s.Handles
		resp.Users = s.Users
	}
	httperrors.Write(w, http.StatusOK, resp)
}
