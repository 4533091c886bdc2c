package util

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrResultNotFound       = errors.New("result not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSubscriptionNotFound = errors.New("no active subscription")
	ErrUnknownPlan          = errors.New("unknown plan")
	ErrPremiumRequired      = errors.New("an active premium subscription is required")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrLoginRequired        = errors.New("login required")
)
