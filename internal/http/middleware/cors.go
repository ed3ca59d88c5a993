package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/imgresolve/internal/config"
)

// CORS lets browser-based authoring tools call the resolve API and read the
// cache status, image source and request id headers it sets on responses.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   []string{"X-Imgresolve-Cache", "X-Imgresolve-Source", "X-Request-Id"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
