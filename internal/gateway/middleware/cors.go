package middleware

import (
	"net/http"
	"strings"
)

const (
	allowHeaders  = "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms, Connect-Content-Encoding, Connect-Accept-Encoding, X-User-Agent"
	exposeHeaders = "Connect-Content-Encoding, Connect-Accept-Encoding, Content-Disposition"
)

// CORS echoes the request origin when it is allowed. An empty allow list
// accepts every origin.
func CORS(allowed []string) func(http.Handler) http.Handler {
	permit := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimSpace(o); o != "" {
			permit[o] = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			switch {
			case origin == "":
				h.Set("Access-Control-Allow-Origin", "*")
			case len(permit) == 0 || permit[origin]:
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			default:
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
