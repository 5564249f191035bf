package checkout

import "errors"

// Failure taxonomy for both checkout flows. Validation errors are raised at
// the boundary where they are detected and never turn into network calls;
// network errors are converted to one of these kinds at the call site and
// rendered as a user-facing state, never re-thrown past the handler.
var (
	// ErrSessionExpired means the purchase intent was missing or invalid.
	// Terminal: the user must restart from the content page.
	ErrSessionExpired = errors.New("checkout session expired")

	// ErrInvalidIdentifier means the content reference in the redeem flow
	// failed shape validation.
	ErrInvalidIdentifier = errors.New("invalid content identifier")

	// ErrMalformedToken means the returning bearer token failed shape
	// validation; it was never sent to the verification authority.
	ErrMalformedToken = errors.New("malformed access token")

	// ErrProviderDirectoryUnavailable means every directory endpoint failed.
	// It wraps the last attempted endpoint's error.
	ErrProviderDirectoryUnavailable = errors.New("provider directory unavailable")

	// ErrRedirectResolutionFailure means the token exchange failed after an
	// apparently successful payment. The destination is never guessed; the
	// user gets an explicit failure state with a manual way home.
	ErrRedirectResolutionFailure = errors.New("redirect resolution failed")

	// ErrSubmitInFlight means a session creation for the same intent is
	// already running; duplicate submits are refused, not queued.
	ErrSubmitInFlight = errors.New("session creation already in flight")
)
