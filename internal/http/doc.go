// Package http provides HTTP handlers and middleware for the ticket booking API.
//
// The router exposes the following endpoints:
//   - POST /register/: creates an account. Body: {"email","first_name","last_name",
//     "username","password","role"}. Response: {"message","user_id"}.
//   - POST /login/: issues an access/refresh token pair. Body: {"email","password"}.
//     Response: {"access_token","refresh_token"}.
//   - POST /logout/: revokes the submitted refresh token. Body: {"refresh_token"}.
//     The access token used to authenticate the call is not revoked.
//   - POST /token/refresh/: exchanges a live refresh token for a new access token.
//   - GET /events/, POST /events/: event catalog endpoints exchanging the eventDTO
//     payload defined in event_handler.go. Creation requires the event_manager role.
//   - GET /bookings/, POST /bookings/: reservation endpoints exchanging the
//     bookingDTO payload defined in booking_handler.go. Listing is scoped to the caller.
//   - GET /payments/, POST /payments/: payment endpoints exchanging the paymentDTO
//     payload defined in payment_handler.go. Listing is scoped to the caller's bookings.
//   - GET /health: liveness probe.
//
// All endpoints except /register/, /login/, /token/refresh/, and /health require a
// bearer access token in the Authorization header.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
