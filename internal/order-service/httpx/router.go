package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.Tracing)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/facade", handler.ProcessOrderFacade)
		r.Post("/transaction-script", handler.ProcessOrderTransactionScript)
		r.Get("/{orderId}", handler.GetOrder)
	})
	return r
}
