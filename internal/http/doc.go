// Package http provides HTTP handlers and middleware for the breakout rooms API.
//
// The router exposes the following endpoints:
//   - POST /identities: issues an anonymous user id. Response: {"userId"}.
//     Clients call it once and keep the id for the whole session.
//   - POST /events: creates an event with the caller pre-registered as its
//     founder. Body: {"eventName","eventPassword","userId","userName"}.
//   - GET /events/{eventId}: point read of the event aggregate; the polling
//     read every client converges through. The password never appears in
//     responses.
//   - POST /events/{eventId}/join: registers the caller after the password
//     gate. Body: {"userId","userName","eventPassword"}.
//   - PUT /events/{eventId}/assignments/{userId}: moves the user to the room
//     in the body ({"roomId"}); an empty room id returns the user to the
//     unassigned pool.
//   - GET /events/{eventId}/roster: the derived per-room roster with resolved
//     user names.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
