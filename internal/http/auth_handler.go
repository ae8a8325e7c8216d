package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/ticket-booking/internal/application"
)

type registrationService interface {
	Register(ctx context.Context, params application.RegisterParams) (application.User, error)
}

type authService interface {
	Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
	Logout(ctx context.Context, principal application.Principal, refreshToken string) error
	RefreshAccessToken(ctx context.Context, params application.RefreshParams) (application.RefreshResult, error)
}

type AuthHandler struct {
	registration registrationService
	auth         authService
	responder    responder
	logger       *slog.Logger
}

func NewAuthHandler(registration registrationService, auth authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{registration: registration, auth: auth, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Register creates a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registration == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode register request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Register", "email", email)

	user, err := h.registration.Register(r.Context(), application.RegisterParams{
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "user registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

// Login authenticates a user and issues an access/refresh token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.auth == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Login", "email", email)

	result, err := h.auth.Login(r.Context(), application.LoginParams{
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "login rejected", "error", err, "error_kind", application.ErrorKind(err))
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{
				Message: "Unable to log in with provided credentials.",
			})
		case errors.Is(err, application.ErrAccountDisabled):
			h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{
				Message: "User account is disabled.",
			})
		default:
			h.responder.handleServiceError(r.Context(), w, err)
		}
		return
	}

	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "user logged in")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		AccessToken:  result.AccessToken.Value,
		RefreshToken: result.RefreshToken.Value,
	})
}

// Logout revokes the submitted refresh token. The access token used to
// authenticate this call keeps working until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.auth == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Logout", "principal_id", principal.UserID)

	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.ErrorContext(r.Context(), "failed to decode logout request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.auth.Logout(r.Context(), principal, req.RefreshToken); err != nil {
		logger.ErrorContext(r.Context(), "logout failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "refresh token revoked")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "Logout successful."})
}

// RefreshToken exchanges a live refresh token for a new access token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.auth == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "RefreshToken", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode refresh request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "RefreshToken")

	result, err := h.auth.RefreshAccessToken(r.Context(), application.RefreshParams{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "token refresh rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", result.AccessToken.UserID).InfoContext(r.Context(), "access token refreshed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, refreshResponse{
		AccessToken: result.AccessToken.Value,
	})
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}
