package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/ticket-booking/internal/application"
)

type paymentService interface {
	CreatePayment(ctx context.Context, params application.CreatePaymentParams) (application.Payment, error)
	ListPayments(ctx context.Context, principal application.Principal) ([]application.Payment, error)
}

type PaymentHandler struct {
	service   paymentService
	responder responder
	logger    *slog.Logger
}

func NewPaymentHandler(service paymentService, logger *slog.Logger) *PaymentHandler {
	base := defaultLogger(logger)
	return &PaymentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PaymentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PaymentHandler", operation, attrs...)
}

// Create records a payment against an existing booking.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingBearerToken)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode payment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "booking_id", req.Booking)

	payment, err := h.service.CreatePayment(r.Context(), application.CreatePaymentParams{
		Principal: principal,
		Input: application.PaymentInput{
			BookingID: req.Booking,
			Amount:    req.Amount,
			Status:    req.Status,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "payment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("payment_id", payment.ID).InfoContext(r.Context(), "payment recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toPaymentDTO(payment))
}

// List returns payments attached to the calling principal's bookings.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingBearerToken)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	payments, err := h.service.ListPayments(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "payment listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]paymentDTO, 0, len(payments))
	for _, payment := range payments {
		dtos = append(dtos, toPaymentDTO(payment))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// paymentRequest accepts the amount as either a JSON number or a string.
type paymentRequest struct {
	Booking string          `json:"booking"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
}

type paymentDTO struct {
	ID      string `json:"id"`
	Booking string `json:"booking"`
	Amount  string `json:"amount"`
	Status  string `json:"status"`
	PaidAt  string `json:"paid_at"`
}

func toPaymentDTO(payment application.Payment) paymentDTO {
	return paymentDTO{
		ID:      payment.ID,
		Booking: payment.BookingID,
		Amount:  payment.Amount.StringFixed(2),
		Status:  payment.Status,
		PaidAt:  payment.PaidAt.UTC().Format(time.RFC3339),
	}
}
