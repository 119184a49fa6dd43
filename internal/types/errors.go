package types

import "errors"

var (
	// ErrDomainNotAllowed is returned when a host (initial or post-redirect)
	// is outside the supported retail domains. Never retried.
	ErrDomainNotAllowed = errors.New("domain not allowed")

	// ErrNoFixture is returned in sandbox mode when no canned fixture exists
	// for the requested product.
	ErrNoFixture = errors.New("no sandbox fixture for product")

	// ErrExtractionIncomplete is returned when a tier produced a record that
	// fails the minimal-completeness check. Triggers escalation in auto mode.
	ErrExtractionIncomplete = errors.New("extraction incomplete")

	// ErrExtractionFailed is returned when every tier has been exhausted.
	ErrExtractionFailed = errors.New("extraction failed on all tiers")

	// ErrProviderUnavailable is returned when an OCR provider lacks
	// credentials or the account lacks the required entitlement.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrTimeout is returned when a bounded I/O operation exceeded its budget.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidInput is returned for malformed URLs or barcode strings.
	ErrInvalidInput = errors.New("invalid input")
)
