package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/service"
)

// BuyService defines the purchase operations required by ActionHandler.
type BuyService interface {
	Describe(ctx context.Context, id string, amount decimal.Decimal, origin string) (service.ActionDocument, error)
	BuildPurchase(ctx context.Context, id, account string, amount decimal.Decimal) (service.Purchase, error)
}

// ActionHandler serves the action discovery and buy endpoints.
type ActionHandler struct {
	BuyService BuyService
	// PublicBaseURL, when set, is used as the origin of generated links
	// instead of the request's forwarded scheme and host.
	PublicBaseURL string
	Logger        *zap.Logger
}

type actionRule struct {
	PathPattern string `json:"pathPattern"`
	APIPath     string `json:"apiPath"`
}

type actionRules struct {
	Rules []actionRule `json:"rules"`
}

type buyRequest struct {
	Account string `json:"account"`
}

// Rules handles GET /actions.json.
func (h *ActionHandler) Rules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, actionRules{Rules: []actionRule{{
		PathPattern: "/api/actions/buy**",
		APIPath:     "/api/actions/buy**",
	}}})
}

// Describe handles GET /api/actions/buy?cardId=&amount=.
func (h *ActionHandler) Describe(w http.ResponseWriter, r *http.Request) {
	id, amount, ok := h.query(w, r)
	if !ok {
		return
	}

	doc, err := h.BuyService.Describe(r.Context(), id, amount, h.origin(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Buy handles POST /api/actions/buy?cardId=&amount= with body {"account"}.
// It replies with the base64 transaction the buyer signs.
func (h *ActionHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id, amount, ok := h.query(w, r)
	if !ok {
		return
	}

	var req buyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Account) == "" {
		writeError(w, http.StatusBadRequest, "Missing account")
		return
	}

	p, err := h.BuyService.BuildPurchase(r.Context(), id, req.Account, amount)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ActionHandler) query(w http.ResponseWriter, r *http.Request) (string, decimal.Decimal, bool) {
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("cardId"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing cardId")
		return "", decimal.Zero, false
	}

	amount := decimal.Zero
	if raw := strings.TrimSpace(q.Get("amount")); raw != "" {
		a, err := decimal.NewFromString(raw)
		if err != nil || a.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return "", decimal.Zero, false
		}
		amount = a
	}
	return id, amount, true
}

func (h *ActionHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "Card not found")
	case errors.Is(err, service.ErrNotMinted),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidAccount),
		errors.Is(err, service.ErrNoInventory):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTreasuryMisconfigured):
		writeError(w, http.StatusInternalServerError, "Treasury misconfigured")
	default:
		h.logger().Error("buy action failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build transaction")
	}
}

func (h *ActionHandler) origin(r *http.Request) string {
	if base := strings.TrimRight(strings.TrimSpace(h.PublicBaseURL), "/"); base != "" {
		return base
	}
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		proto = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return proto + "://" + r.Host
}

func (h *ActionHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
