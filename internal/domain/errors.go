package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyApplied = errors.New("event already applied")
	ErrBadSignature   = errors.New("webhook signature mismatch")
	ErrStaleTimestamp = errors.New("webhook timestamp outside tolerance")
	ErrMalformedEvent = errors.New("malformed webhook event")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrAlreadyQuoted  = errors.New("catering request already quoted")
)
