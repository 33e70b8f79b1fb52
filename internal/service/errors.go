package service

import "errors"

// Booking business-rule rejections. These are client-correctable and map to
// the bad-request class at the API layer; they are raised at the first
// violation, never aggregated.
var (
	ErrInvalidInput       = errors.New("invalid identifier or timestamp")
	ErrDurationExceeded   = errors.New("workout session cannot exceed the maximum duration")
	ErrOutOfBookingWindow = errors.New("sessions can only be booked within the current and next week")
	ErrDailyLimitExceeded = errors.New("only one workout session is allowed per day")
	ErrCapacityExceeded   = errors.New("gym is at full capacity for the selected time slot")
)

// Lookup and lifecycle failures.
var (
	// ErrSessionNotFoundOrUnauthorized deliberately conflates "absent" and
	// "not owned by you" so non-owners cannot probe for session existence.
	ErrSessionNotFoundOrUnauthorized = errors.New("workout session not found or unauthorized")
	ErrSessionNotFound               = errors.New("workout session not found")
	ErrInvalidState                  = errors.New("operation not permitted in the session's current state")
	ErrAlreadyStarted                = errors.New("cannot cancel a session that has already started")
)

// Account failures.
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrAccountNotApproved   = errors.New("account is awaiting administrator approval")
	ErrInvalidOTP           = errors.New("invalid or expired OTP")
	ErrCannotModifyAdmin    = errors.New("cannot update admin status")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)
