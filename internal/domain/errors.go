package domain

import "errors"

// Identity errors
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Profile errors
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrUsernameTaken   = errors.New("username already taken")
)

// Design system / generation errors
var (
	ErrDesignSystemNotFound = errors.New("design system not found")
	ErrGenerationLimit      = errors.New("monthly generation limit reached")
	ErrGenerationFailed     = errors.New("generation failed")
)
