package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/SolForge/internal/models"
	"github.com/atinyakov/SolForge/internal/service"
)

// CardService defines the card store operations required by CardHandler.
type CardService interface {
	// Save validates and stores a card, replacing any previous version.
	Save(ctx context.Context, card models.Card) error
	// Get returns the card stored under id.
	Get(ctx context.Context, id string) (models.Card, error)
	// Image returns the inline image of a card, scaled to width when it is
	// positive.
	Image(ctx context.Context, id string, width int) (string, []byte, error)
}

// CardHandler serves the card store endpoints.
type CardHandler struct {
	CardService CardService
}

type saveResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// Save handles POST /api/cards. The body is a card document; the reply is
// {"ok":true,"id":...}.
func (h *CardHandler) Save(w http.ResponseWriter, r *http.Request) {
	var card models.Card
	if err := decodeBody(w, r, &card); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.CardService.Save(r.Context(), card); err != nil {
		if errors.Is(err, service.ErrInvalidCard) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save card")
		return
	}

	writeJSON(w, http.StatusOK, saveResponse{OK: true, ID: card.ID})
}

// Get handles GET /api/cards/{id}.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.CardService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrCardNotFound) {
			writeError(w, http.StatusNotFound, "Card not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load card")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Image handles GET /api/cards/{id}/image. The optional w query parameter
// scales the image down to that width.
func (h *CardHandler) Image(w http.ResponseWriter, r *http.Request) {
	width := 0
	if raw := r.URL.Query().Get("w"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid width")
			return
		}
		width = n
	}

	mime, data, err := h.CardService.Image(r.Context(), chi.URLParam(r, "id"), width)
	switch {
	case errors.Is(err, service.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "Card not found")
		return
	case errors.Is(err, service.ErrNoImage):
		writeError(w, http.StatusNotFound, "Image not found")
		return
	case errors.Is(err, service.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to load image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
