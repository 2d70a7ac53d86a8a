package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access to the API.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to call the API. Empty or a
	// single "*" entry allows everyone.
	AllowOrigins []string
	// AllowHeaders lists request headers allowed in actual requests.
	// When empty, preflight requests get their requested headers echoed.
	AllowHeaders []string
	// AllowCredentials permits cookies and Authorization headers. With
	// credentials enabled the wildcard origin is never sent; the
	// matching origin is echoed instead.
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

const corsMethods = "GET, POST, PUT, DELETE, OPTIONS"

// CORS handles cross-origin request headers and preflight requests.
func CORS(cfg CORSConfig) Middleware {
	wildcard := len(cfg.AllowOrigins) == 0
	origins := make(map[string]string, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
		origins[strings.ToLower(o)] = o
	}
	// The Fetch spec forbids "*" together with credentials.
	if cfg.AllowCredentials {
		wildcard = false
	}

	headers := strings.Join(cfg.AllowHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			allow := ""
			switch {
			case wildcard:
				allow = "*"
			default:
				w.Header().Add("Vary", "Origin")
				allow = origins[strings.ToLower(origin)]
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Add("Vary", "Access-Control-Request-Method")
				w.Header().Add("Vary", "Access-Control-Request-Headers")

				if allow != "" {
					w.Header().Set("Access-Control-Allow-Origin", allow)
					w.Header().Set("Access-Control-Allow-Methods", corsMethods)
					if headers != "" {
						w.Header().Set("Access-Control-Allow-Headers", headers)
					} else if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
						w.Header().Set("Access-Control-Allow-Headers", req)
					}
					if cfg.AllowCredentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
					if cfg.MaxAge > 0 {
						w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
				}

				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allow != "" {
				w.Header().Set("Access-Control-Allow-Origin", allow)
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
