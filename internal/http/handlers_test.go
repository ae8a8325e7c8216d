package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/ticket-booking/internal/application"
	"github.com/example/ticket-booking/internal/testfixtures"
)

type apiHarness struct {
	router http.Handler
	store  *testfixtures.MemoryStore
	clock  *testfixtures.Clock
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("id")
	tokens := testfixtures.NewIDGenerator("tok")

	hasher := func(password string) (string, error) {
		return "hashed:" + password, nil
	}
	verify := func(hashedPassword, password string) error {
		if hashedPassword == "hashed:"+password {
			return nil
		}
		return application.ErrInvalidCredentials
	}

	registration := application.NewRegistrationService(store, nil, hasher, ids.NextFunc(), clock.NowFunc(), nil)
	auth := application.NewAuthService(store, store, verify, tokens.NextFunc(), ids.NextFunc(), clock.NowFunc(), 15*time.Minute, 24*time.Hour)
	events := application.NewEventService(store, ids.NextFunc(), clock.NowFunc(), nil)
	bookings := application.NewBookingService(store, store, store, nil, ids.NextFunc(), clock.NowFunc(), nil)
	payments := application.NewPaymentService(store, store, ids.NextFunc(), clock.NowFunc(), nil)

	router := NewRouter(RouterConfig{
		Auth:      NewAuthHandler(registration, auth, nil),
		Events:    NewEventHandler(events, nil),
		Bookings:  NewBookingHandler(bookings, nil),
		Payments:  NewPaymentHandler(payments, nil),
		Validator: auth,
	})

	return &apiHarness{router: router, store: store, clock: clock}
}

func (h *apiHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func (h *apiHarness) register(t *testing.T, email, role string) string {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/register/", "", map[string]any{
		"email":      email,
		"first_name": "Test",
		"last_name":  "User",
		"username":   email,
		"password":   "s3cret",
		"role":       role,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	body := decodeBody(t, resp)
	require.Equal(t, "User registered successfully", body["message"])
	require.NotEmpty(t, body["user_id"])
	return body["user_id"].(string)
}

func (h *apiHarness) login(t *testing.T, email string) (access, refresh string) {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/login/", "", map[string]any{
		"email":    email,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decodeBody(t, resp)
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])
	return body["access_token"].(string), body["refresh_token"].(string)
}

func TestAPI_BookingFlow(t *testing.T) {
	h := newAPIHarness(t)

	managerID := h.register(t, "manager@example.com", "event_manager")
	h.register(t, "alice@example.com", "user")

	managerAccess, _ := h.login(t, "manager@example.com")
	aliceAccess, _ := h.login(t, "alice@example.com")

	// Event creation requires the event_manager role.
	denied := h.do(t, http.MethodPost, "/events/", aliceAccess, map[string]any{
		"name":     "Rock Concert",
		"date":     "2025-09-20T19:00:00Z",
		"location": "Arena",
	})
	require.Equal(t, http.StatusUnauthorized, denied.Code, denied.Body.String())

	created := h.do(t, http.MethodPost, "/events/", managerAccess, map[string]any{
		"name":        "Rock Concert",
		"description": "Live show",
		"date":        "2025-09-20T19:00:00Z",
		"location":    "Arena",
		"category":    "music",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	event := decodeBody(t, created)
	require.Equal(t, managerID, event["created_by"])
	eventID := event["id"].(string)

	// Anyone authenticated can browse events.
	listed := h.do(t, http.MethodGet, "/events/", aliceAccess, nil)
	require.Equal(t, http.StatusOK, listed.Code)

	// Booking is attributed to the caller even though no user is submitted.
	booked := h.do(t, http.MethodPost, "/bookings/", aliceAccess, map[string]any{
		"event":             eventID,
		"number_of_tickets": 2,
	})
	require.Equal(t, http.StatusCreated, booked.Code, booked.Body.String())
	booking := decodeBody(t, booked)
	bookingID := booking["id"].(string)
	require.NotEqual(t, managerID, booking["user"])

	// Unknown event produces a field error.
	badBooking := h.do(t, http.MethodPost, "/bookings/", aliceAccess, map[string]any{
		"event":             "missing",
		"number_of_tickets": 1,
	})
	require.Equal(t, http.StatusBadRequest, badBooking.Code)
	badBody := decodeBody(t, badBooking)
	errsMap := badBody["errors"].(map[string]any)
	require.Equal(t, "Event does not exist.", errsMap["event"])

	// Payment accepts string or numeric amounts and echoes the status.
	paid := h.do(t, http.MethodPost, "/payments/", aliceAccess, map[string]any{
		"booking": bookingID,
		"amount":  "149.50",
		"status":  "completed",
	})
	require.Equal(t, http.StatusCreated, paid.Code, paid.Body.String())
	payment := decodeBody(t, paid)
	require.Equal(t, "149.50", payment["amount"])
	require.Equal(t, "completed", payment["status"])

	// A second payment for the same booking conflicts.
	again := h.do(t, http.MethodPost, "/payments/", aliceAccess, map[string]any{
		"booking": bookingID,
		"amount":  10,
		"status":  "completed",
	})
	require.Equal(t, http.StatusConflict, again.Code, again.Body.String())

	// Listings are scoped to the caller.
	aliceBookings := h.do(t, http.MethodGet, "/bookings/", aliceAccess, nil)
	require.Equal(t, http.StatusOK, aliceBookings.Code)
	var bookingList []map[string]any
	require.NoError(t, json.Unmarshal(aliceBookings.Body.Bytes(), &bookingList))
	require.Len(t, bookingList, 1)

	managerBookings := h.do(t, http.MethodGet, "/bookings/", managerAccess, nil)
	require.Equal(t, http.StatusOK, managerBookings.Code)
	var managerList []map[string]any
	require.NoError(t, json.Unmarshal(managerBookings.Body.Bytes(), &managerList))
	require.Empty(t, managerList)

	alicePayments := h.do(t, http.MethodGet, "/payments/", aliceAccess, nil)
	require.Equal(t, http.StatusOK, alicePayments.Code)
	var paymentList []map[string]any
	require.NoError(t, json.Unmarshal(alicePayments.Body.Bytes(), &paymentList))
	require.Len(t, paymentList, 1)

	managerPayments := h.do(t, http.MethodGet, "/payments/", managerAccess, nil)
	require.Equal(t, http.StatusOK, managerPayments.Code)
	var managerPaymentList []map[string]any
	require.NoError(t, json.Unmarshal(managerPayments.Body.Bytes(), &managerPaymentList))
	require.Empty(t, managerPaymentList)
}

func TestAPI_AuthLifecycle(t *testing.T) {
	h := newAPIHarness(t)

	h.register(t, "bob@example.com", "user")
	access, refresh := h.login(t, "bob@example.com")

	// Wrong password and unknown email yield the same message.
	wrongPassword := h.do(t, http.MethodPost, "/login/", "", map[string]any{
		"email":    "bob@example.com",
		"password": "nope",
	})
	require.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	require.Equal(t, "Unable to log in with provided credentials.", decodeBody(t, wrongPassword)["message"])

	unknownEmail := h.do(t, http.MethodPost, "/login/", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	require.Equal(t, "Unable to log in with provided credentials.", decodeBody(t, unknownEmail)["message"])

	// Refresh exchanges the refresh token for a new access token.
	refreshed := h.do(t, http.MethodPost, "/token/refresh/", "", map[string]any{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, refreshed.Code, refreshed.Body.String())
	newAccess := decodeBody(t, refreshed)["access_token"].(string)
	require.NotEmpty(t, newAccess)
	require.NotEqual(t, access, newAccess)

	// Logout requires the refresh token in the body.
	missingToken := h.do(t, http.MethodPost, "/logout/", access, map[string]any{})
	require.Equal(t, http.StatusBadRequest, missingToken.Code)

	loggedOut := h.do(t, http.MethodPost, "/logout/", access, map[string]any{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, loggedOut.Code, loggedOut.Body.String())
	require.Equal(t, "Logout successful.", decodeBody(t, loggedOut)["message"])

	// The access token keeps working after logout.
	stillValid := h.do(t, http.MethodGet, "/events/", access, nil)
	require.Equal(t, http.StatusOK, stillValid.Code)

	// The revoked refresh token can no longer be exchanged.
	revoked := h.do(t, http.MethodPost, "/token/refresh/", "", map[string]any{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusUnauthorized, revoked.Code)

	// An unknown refresh token on logout is a server-side failure, not validation.
	unknown := h.do(t, http.MethodPost, "/logout/", access, map[string]any{
		"refresh_token": "bogus",
	})
	require.Equal(t, http.StatusInternalServerError, unknown.Code)

	// Expired access tokens are rejected.
	h.clock.Advance(16 * time.Minute)
	expired := h.do(t, http.MethodGet, "/events/", access, nil)
	require.Equal(t, http.StatusUnauthorized, expired.Code)

	// Requests without credentials are rejected outright.
	anonymous := h.do(t, http.MethodGet, "/events/", "", nil)
	require.Equal(t, http.StatusUnauthorized, anonymous.Code)
}

func TestAPI_RegisterValidation(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.do(t, http.MethodPost, "/register/", "", map[string]any{
		"email": "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	body := decodeBody(t, resp)
	errsMap := body["errors"].(map[string]any)
	require.Equal(t, "Enter a valid email address.", errsMap["email"])
	require.Equal(t, "Password is required.", errsMap["password"])
	require.Equal(t, "Role must be one of: user, event_manager.", errsMap["role"])

	noRole := h.do(t, http.MethodPost, "/register/", "", map[string]any{
		"email":      "norole@example.com",
		"first_name": "No",
		"last_name":  "Role",
		"username":   "norole",
		"password":   "s3cret",
	})
	require.Equal(t, http.StatusBadRequest, noRole.Code, noRole.Body.String())
	noRoleErrs := decodeBody(t, noRole)["errors"].(map[string]any)
	require.Equal(t, "Role must be one of: user, event_manager.", noRoleErrs["role"])

	h.register(t, "carol@example.com", "user")
	duplicate := h.do(t, http.MethodPost, "/register/", "", map[string]any{
		"email":      "carol@example.com",
		"first_name": "Carol",
		"last_name":  "White",
		"username":   "carol2",
		"password":   "s3cret",
		"role":       "user",
	})
	require.Equal(t, http.StatusBadRequest, duplicate.Code)
	dupErrs := decodeBody(t, duplicate)["errors"].(map[string]any)
	require.Equal(t, "Email already exists.", dupErrs["email"])
}

func TestAPI_DisabledAccount(t *testing.T) {
	h := newAPIHarness(t)

	userID := h.register(t, "dan@example.com", "user")
	h.store.SetUserActive(userID, false)

	resp := h.do(t, http.MethodPost, "/login/", "", map[string]any{
		"email":    "dan@example.com",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "User account is disabled.", decodeBody(t, resp)["message"])
}

func TestAPI_Health(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "ok", decodeBody(t, resp)["message"])
}
