// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"depot/internal/core/apperror"
	"depot/internal/core/id"
)

// --- List Response ---

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// NewListResponse never renders a null items array.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ParseID parses a path or query identifier, naming the field on failure.
func ParseID(field, raw string) (id.ID, error) {
	if raw == "" {
		return id.Nil(), apperror.NewValidation(field+" is required").WithDetail("field", field)
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid "+field+" format").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return parsed, nil
}

// ParseOptionalID is ParseID that maps an empty value to nil.
func ParseOptionalID(field, raw string) (*id.ID, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := ParseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
