package middleware

import "net/http"

// ActionVersion is the action protocol version advertised on every
// response.
const ActionVersion = "2.0"

// ActionHeaders sets the headers wallets and unfurlers look for on action
// endpoints. chainID is the CAIP-2 style identifier of the target cluster.
//
// The CORS headers are set whether or not the request carries an Origin:
// unfurlers fetch server side and still expect them.
func ActionHeaders(chainID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")
			h.Set("Access-Control-Expose-Headers", "X-Action-Version, X-Blockchain-Ids")
			h.Set("X-Action-Version", ActionVersion)
			h.Set("X-Blockchain-Ids", chainID)
			next.ServeHTTP(w, r)
		})
	}
}
