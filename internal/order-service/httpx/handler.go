package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator"
	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/adapters/sqlstore"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeOrderProcessing   = "ORDER_PROCESSING_ERROR"
	CodePaymentProcessing = "PAYMENT_PROCESSING_ERROR"
	CodeExternalAPI       = "EXTERNAL_API_ERROR"
	CodeUnknown           = "UNKNOWN_ERROR"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"
)

// OrderProcessor runs one fulfillment. *coordinator.Orchestrator satisfies it.
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, req domain.OrderRequest) error
}

type OrderReader interface {
	FindByOrderID(ctx context.Context, orderID string) (domain.Order, error)
}

type PaymentReader interface {
	FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error)
}

type AuditReader interface {
	ListByOrderID(ctx context.Context, orderID string) ([]sagalog.TransactionLogEntry, error)
}

// Readers back the order lookup endpoint.
type Readers struct {
	Orders   OrderReader
	Payments PaymentReader
	Audit    AuditReader
}

// Handler serves the order endpoints. The two POST routes differ only in
// which architectural variant processes the order.
type Handler struct {
	facade  OrderProcessor
	script  OrderProcessor
	readers Readers
	logger  *slog.Logger
}

func NewHandler(facade, script OrderProcessor, readers Readers, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{facade: facade, script: script, readers: readers, logger: logger}
}

func (h *Handler) ProcessOrderFacade(w http.ResponseWriter, r *http.Request) {
	h.processOrder(w, r, h.facade, "Facade")
}

func (h *Handler) ProcessOrderTransactionScript(w http.ResponseWriter, r *http.Request) {
	h.processOrder(w, r, h.script, "Transaction Script")
}

func (h *Handler) processOrder(w http.ResponseWriter, r *http.Request, p OrderProcessor, pattern string) {
	var dto OrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}

	ctx := r.Context()
	h.logger.InfoContext(ctx, "processing order",
		"order_id", dto.OrderID,
		"pattern", pattern,
		"request_id", interceptors.RequestIDFromContext(ctx),
	)

	if err := p.ProcessOrder(ctx, dto.toDomain()); err != nil {
		h.logger.ErrorContext(ctx, "order processing failed", "order_id", dto.OrderID, "pattern", pattern, "error", err)
		status, code := classify(err)
		writeError(w, status, code, fmt.Sprintf("Order processing failed (%s): %s", code, err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Order processed successfully with %s pattern", pattern),
	})
}

// GetOrder returns the order with its payment and audit trail.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	ctx := r.Context()

	order, err := h.readers.Orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, sqlstore.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, CodeOrderNotFound, err.Error())
		return
	}
	if err != nil {
		h.internalError(w, r, orderID, err)
		return
	}

	var payment *domain.Payment
	switch p, err := h.readers.Payments.FindByOrderID(ctx, orderID); {
	case err == nil:
		payment = &p
	case !errors.Is(err, sqlstore.ErrPaymentNotFound):
		h.internalError(w, r, orderID, err)
		return
	}

	entries, err := h.readers.Audit.ListByOrderID(ctx, orderID)
	if err != nil {
		h.internalError(w, r, orderID, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderDetails(order, payment, entries))
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, orderID string, err error) {
	h.logger.ErrorContext(r.Context(), "order lookup failed", "order_id", orderID, "error", err)
	writeError(w, http.StatusInternalServerError, CodeUnknown, err.Error())
}

// classify maps a saga outcome to its HTTP status and error code.
func classify(err error) (int, string) {
	switch coordinator.KindOf(err) {
	case coordinator.KindValidation:
		return http.StatusBadRequest, CodeValidation
	case coordinator.KindOrderPersist:
		return http.StatusBadRequest, CodeOrderProcessing
	case coordinator.KindPaymentPersist:
		return http.StatusBadGateway, CodePaymentProcessing
	case coordinator.KindGatewayCall:
		return http.StatusServiceUnavailable, CodeExternalAPI
	default:
		return http.StatusInternalServerError, CodeUnknown
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
