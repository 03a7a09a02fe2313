// Package http wires the card store, action and pinning endpoints into a chi
// router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/middleware"
)

// Pinning calls out to a paid third party, so each client gets a small
// budget.
const (
	pinRatePerSecond = 0.5
	pinBurst         = 5
)

// Handlers groups the endpoint handlers served by the router.
type Handlers struct {
	Cards   *CardHandler
	Actions *ActionHandler
	Pin     *PinHandler
}

// NewRouter constructs the HTTP handler for the API.
//
// Routes:
//
//	GET  /actions.json            → Actions.Rules
//	POST /api/cards               → Cards.Save
//	GET  /api/cards/{id}          → Cards.Get
//	GET  /api/cards/{id}/image    → Cards.Image
//	GET  /api/actions/buy         → Actions.Describe
//	POST /api/actions/buy         → Actions.Buy
//	POST /api/pin                 → Pin.Pin (rate limited)
//
// Every route, and any other path under /api/, answers OPTIONS with 204.
// Every response carries the action version and blockchain id headers and
// permissive CORS headers, with or without an Origin on the request. Bodies
// are decoded as JSON whatever their Content-Type.
func NewRouter(h Handlers, chainID string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type", "Authorization", "Accept", "Accept-Encoding"},
		ExposedHeaders:     []string{"X-Action-Version", "X-Blockchain-Ids"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))
	r.Use(middleware.ActionHeaders(chainID))

	r.Get("/actions.json", h.Actions.Rules)

	r.Post("/api/cards", h.Cards.Save)
	r.Get("/api/cards/{id}", h.Cards.Get)
	r.Get("/api/cards/{id}/image", h.Cards.Image)

	r.Get("/api/actions/buy", h.Actions.Describe)
	r.Post("/api/actions/buy", h.Actions.Buy)

	r.With(middleware.RateLimit(pinRatePerSecond, pinBurst)).Post("/api/pin", h.Pin.Pin)

	for _, p := range []string{
		"/actions.json",
		"/api/cards",
		"/api/cards/{id}",
		"/api/cards/{id}/image",
		"/api/actions/buy",
		"/api/pin",
	} {
		r.Options(p, noContent)
	}
	r.Options("/api/*", noContent)

	return r
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
