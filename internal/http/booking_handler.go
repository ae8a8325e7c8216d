package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/ticket-booking/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	ListBookings(ctx context.Context, principal application.Principal) ([]application.Booking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// Create stores a reservation attributed to the calling principal.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingBearerToken)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "event_id", req.Event)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			EventID:         req.Event,
			NumberOfTickets: req.NumberOfTickets,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBookingDTO(booking))
}

// List returns the calling principal's reservations.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
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

	bookings, err := h.service.ListBookings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		dtos = append(dtos, toBookingDTO(booking))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

type bookingRequest struct {
	Event           string `json:"event"`
	NumberOfTickets int    `json:"number_of_tickets"`
}

type bookingDTO struct {
	ID              string `json:"id"`
	User            string `json:"user"`
	Event           string `json:"event"`
	NumberOfTickets int    `json:"number_of_tickets"`
	BookedAt        string `json:"booked_at"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:              booking.ID,
		User:            booking.UserID,
		Event:           booking.EventID,
		NumberOfTickets: booking.NumberOfTickets,
		BookedAt:        booking.BookedAt.UTC().Format(time.RFC3339),
	}
}
