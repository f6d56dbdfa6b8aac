package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS builds the CORS policy for the browser frontend. The API carries
// no cookie auth today, so credentials stay disabled.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}
