package application

import "errors"

// Expected failures are sentinel errors; callers branch with errors.Is and
// map them to transport status codes. Unknown email and bad password are
// intentionally indistinguishable.
var (
	ErrDuplicateEmail           = errors.New("email already registered")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrNotVerified              = errors.New("email not verified")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrVerificationTokenExpired = errors.New("verification token expired")
	ErrInvalidRefreshToken      = errors.New("invalid refresh token")
	ErrExpiredRefreshToken      = errors.New("invalid or expired refresh token")
	ErrUserNotFound             = errors.New("user not found")
	ErrUnauthorized             = errors.New("unauthorized")
)
