package middleware

import (
	"net/http"

	"leadflow/internal/platform/config"
)

// CORS applies the configured origin policy to the public lead-form
// endpoints. The webhook endpoints never need it; the platform calls those
// server to server.
type CORS struct {
	allowedOrigin string
}

func NewCORS(cfg config.CORSConfig) *CORS {
	return &CORS{allowedOrigin: cfg.AllowedOrigin}
}

func (c *CORS) headers(origin string) map[string]string {
	allow := c.allowedOrigin
	if allow != "*" && origin != "" && origin == c.allowedOrigin {
		allow = origin
	}

	return map[string]string{
		"Access-Control-Allow-Origin":  allow,
		"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
}

func (c *CORS) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range c.headers(r.Header.Get("Origin")) {
			w.Header().Set(k, v)
		}
		next(w, r)
	}
}

func (c *CORS) Preflight(w http.ResponseWriter, r *http.Request) {
	for k, v := range c.headers(r.Header.Get("Origin")) {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusNoContent)
}
