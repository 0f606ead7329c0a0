package middleware

import (
	"net/http"
	"slices"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const preflightMaxAge = 5 * time.Minute

// CORS lets browser clients on origins call the journal API. With no origins
// configured it is a no-op. A "*" origin never carries credentials.
func CORS(origins []string, allowCredentials bool) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{chimw.RequestIDHeader},
		AllowCredentials: allowCredentials && !slices.Contains(origins, "*"),
		MaxAge:           int(preflightMaxAge / time.Second),
	})
}
