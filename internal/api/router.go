package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "leadflow/internal/api/context"
	"leadflow/internal/api/handlers"
	"leadflow/internal/api/middleware"
)

type Dependencies struct {
	WebhookHandler *handlers.WebhookHandler
	LeadHandler    *handlers.LeadHandler
	HealthHandler  *handlers.HealthHandler
	WebhookLimiter *middleware.RateLimiter
	FormLimiter    *middleware.RateLimiter
	CORS           *middleware.CORS
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	// Platform webhook: challenge echo + signed deliveries
	router.GET("/webhook", wrap(deps.WebhookHandler.Verify))
	router.POST("/webhook",
		chain(deps.WebhookHandler.Receive, deps.WebhookLimiter.Handle))

	// Lead management API
	router.GET("/api/v1/leads",
		chain(deps.LeadHandler.List, deps.CORS.Handle))
	router.POST("/api/v1/leads",
		chain(deps.LeadHandler.Create, deps.CORS.Handle, deps.FormLimiter.Handle))
	router.OPTIONS("/api/v1/leads", wrap(deps.CORS.Preflight))
	router.GET("/api/v1/leads/:lead_id", wrap(deps.LeadHandler.Get))
	router.DELETE("/api/v1/leads/:lead_id", wrap(deps.LeadHandler.Delete))
	router.POST("/api/v1/leads/:lead_id/stage", wrap(deps.LeadHandler.ChangeStage))
	router.GET("/api/v1/leads/:lead_id/events", wrap(deps.LeadHandler.ListEvents))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
