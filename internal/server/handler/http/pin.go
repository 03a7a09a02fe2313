package http

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/service"
)

// PinService uploads card artwork and metadata.
type PinService interface {
	Pin(ctx context.Context, req service.PinRequest) (service.PinResult, error)
}

// PinHandler serves POST /api/pin.
type PinHandler struct {
	PinService PinService
	Logger     *zap.Logger
}

// Pin handles POST /api/pin.
func (h *PinHandler) Pin(w http.ResponseWriter, r *http.Request) {
	var req service.PinRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := h.PinService.Pin(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrPinningNotConfigured):
		writeError(w, http.StatusInternalServerError, "Missing PINATA_JWT")
		return
	case errors.Is(err, service.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		if h.Logger != nil {
			h.Logger.Error("pinning failed", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "failed to pin card")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
