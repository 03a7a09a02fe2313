package service

import "errors"

// Errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrCardNotFound          = errors.New("card not found")
	ErrInvalidCard           = errors.New("invalid card")
	ErrNoImage               = errors.New("card has no inline image")
	ErrInvalidImage          = errors.New("invalid image")
	ErrNotMinted             = errors.New("card has no mintAddress")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidAccount        = errors.New("invalid account")
	ErrTreasuryMisconfigured = errors.New("treasury misconfigured")
	ErrNoInventory           = errors.New("treasury token account not found for this mint")
	ErrPinningNotConfigured  = errors.New("pinning not configured")
)
