// Package api provides the HTTP handlers for the Keepsake API: account
// registration and login, memory capture and management, the review loop,
// and generated insights. Handlers translate between the JSON wire format
// and the service layer, mapping service errors to sanitized HTTP
// responses.
package api
