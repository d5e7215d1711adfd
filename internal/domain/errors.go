package domain

import "errors"

var (
	ErrInvalidProduct     = errors.New("invalid product id")
	ErrInvalidOrderLines  = errors.New("order lines must be non-empty with unique products and positive quantities")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAlreadyPaid        = errors.New("order already paid")
	ErrInsufficientPoints = errors.New("user points not enough")
	ErrVersionConflict    = errors.New("user version conflict")
	ErrPaymentKeyRequired = errors.New("payment key is required")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrDuplicateKey = errors.New("duplicate key")
)
