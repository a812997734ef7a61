// Package dto defines the request and response bodies of the HTTP API.
package dto

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse wraps an error message.
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}
