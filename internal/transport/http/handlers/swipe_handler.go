package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/ivankudzin/swipematch/internal/services/auth"
	swipesvc "github.com/ivankudzin/swipematch/internal/services/swipes"
	"github.com/ivankudzin/swipematch/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/swipematch/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
	logger  *zap.Logger
}

func NewSwipeHandler(service *swipesvc.Service, logger *zap.Logger) *SwipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeHandler{service: service, logger: logger}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if strings.TrimSpace(req.TargetID) == "" || strings.TrimSpace(req.Action) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and action are required")
		return
	}

	result, err := h.service.SubmitSwipe(r.Context(), identity.UserID, req.TargetID, req.Action)
	if err != nil {
		h.writeSwipeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:            true,
		Matched:       result.Matched,
		CounterpartID: result.CounterpartID,
	})
}

func (h *SwipeHandler) HandleProject(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.ProjectSwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "action is required")
		return
	}

	result, err := h.service.SubmitProjectSwipe(r.Context(), identity.UserID, chi.URLParam(r, "project_id"), req.Action)
	if err != nil {
		h.writeSwipeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProjectSwipeResponse{
		OK:     true,
		Action: string(result.Action),
	})
}

func (h *SwipeHandler) writeSwipeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, swipesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
	case errors.Is(err, swipesvc.ErrUnsupportedAction):
		writeBadRequest(w, "VALIDATION_ERROR", "unsupported action")
	case errors.Is(err, swipesvc.ErrInvalidSwipeTarget):
		httperrors.Write(w, http.StatusUnprocessableEntity, httperrors.APIError{
			Code:    "INVALID_SWIPE_TARGET",
			Message: "swipe target does not exist or is the actor",
		})
	case errors.Is(err, swipesvc.ErrStoreUnavailable):
		h.logger.Error("swipe store unavailable", zap.Error(err))
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
			Code:    "STORE_UNAVAILABLE",
			Message: "swipe could not be saved, retry later",
		})
	default:
		if tf, ok := swipesvc.IsTooFast(err); ok {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "too many swipes, slow down",
				RetryAfterSec: tf.RetryAfter(),
			})
			return
		}
		h.logger.Error("swipe failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
	}
}
