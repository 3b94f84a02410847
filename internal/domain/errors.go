package domain

import "errors"

// Sentinel errors for the scheduling core.
// Use errors.Is to check: errors.Is(err, domain.ErrStorageUnavailable)
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrInvalidQuietHours  = errors.New("invalid quiet hours")
	ErrPermissionDenied   = errors.New("notification permission denied")
	ErrDeliveryRejected   = errors.New("delivery rejected")
	ErrNotFound           = errors.New("not found")
)
