package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidSignature = &AppError{http.StatusBadRequest, "INVALID_SIGNATURE", "Webhook signature is invalid"}
	ErrStaleWebhook     = &AppError{http.StatusBadRequest, "STALE_WEBHOOK", "Webhook timestamp is outside the accepted window"}
	ErrMalformedWebhook = &AppError{http.StatusBadRequest, "MALFORMED_WEBHOOK", "Webhook payload is malformed"}

	ErrInvalidStatus  = &AppError{http.StatusUnprocessableEntity, "INVALID_STATUS", "Status value is not valid for this resource"}
	ErrAlreadyQuoted  = &AppError{http.StatusConflict, "ALREADY_QUOTED", "Catering request has already been quoted"}
	ErrGatewayFailure = &AppError{http.StatusBadGateway, "GATEWAY_FAILURE", "Payment gateway request failed"}
)
