package integration

import "errors"

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	// ErrPlatformThrottled indicates the platform rejected the request due to
	// rate limiting. Retried with the throttle backoff schedule.
	ErrPlatformThrottled = errors.New("integration: platform throttled request")
	// ErrPlatformUnavailable indicates a transient transport failure
	// (timeout, connection reset, 5xx). Retried with the generic backoff.
	ErrPlatformUnavailable = errors.New("integration: platform temporarily unavailable")
	// ErrPlatformAuthFailed indicates the access token was rejected. Never retried.
	ErrPlatformAuthFailed = errors.New("integration: platform authentication failed")
	// ErrPlatformBadQuery indicates the platform rejected the query itself. Never retried.
	ErrPlatformBadQuery = errors.New("integration: malformed platform query")
	// ErrPlatformInvalidResponse indicates the response body could not be decoded.
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	// ErrRetriesExhausted wraps the last retryable error once the retry
	// ceiling is reached.
	ErrRetriesExhausted = errors.New("integration: retries exhausted")

	// ErrCredentialsMissing indicates the tenant has no storefront credentials configured.
	ErrCredentialsMissing = errors.New("integration: storefront credentials missing")
)

// IsThrottled reports whether err was caused by platform rate limiting.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrPlatformThrottled)
}

// IsTransient reports whether err is retryable with the generic backoff
// schedule. Throttling is handled separately with longer delays.
func IsTransient(err error) bool {
	return errors.Is(err, ErrPlatformUnavailable)
}

// IsPermanent reports whether err must not be retried.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPlatformAuthFailed) ||
		errors.Is(err, ErrPlatformBadQuery) ||
		errors.Is(err, ErrCredentialsMissing)
}
