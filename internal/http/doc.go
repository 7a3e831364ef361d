// Package http provides the HTTP surface of the booking service.
//
// Public endpoints:
//   - GET /: booking page listing the rooms with the reservation form.
//   - GET /api/rooms: JSON room catalog.
//   - GET /api/bookings?room_id=&date=: JSON bookings, optionally filtered.
//   - POST /api/bookings: creates a booking. Body: {"user_name","user_email",
//     "area","booking_date","start_time","end_time","room_id","attendees"}.
//   - GET /cancelar/{token}: cancellation confirmation page.
//   - POST /cancelar/{token}: cancels the booking behind the token.
//
// Admin endpoints (HTML, session cookie protected):
//   - GET /admin/login, POST /admin/login: login form and credential check.
//   - GET /admin/logout: clears the session cookie.
//   - GET /admin: dashboard with sala and fecha filters.
//   - GET /admin/bookings/new, POST /admin/bookings/new: manual booking.
//   - GET /admin/bookings/{id}/edit, POST /admin/bookings/{id}/edit.
//   - POST /admin/bookings/{id}/delete.
//
// Request and response DTOs live alongside their handlers.
package http
