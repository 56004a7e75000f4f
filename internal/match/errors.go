package match

import "errors"

// Error kinds surfaced by the matcher. Callers branch with errors.Is rather
// than matching message text.
var (
	// ErrConfiguration marks construction or setting failures: a missing API
	// key, or a no-result threshold outside [0,100].
	ErrConfiguration = errors.New("configuration error")

	// ErrInput marks Find preconditions that failed before any network call:
	// an empty candidate list or an unset search key.
	ErrInput = errors.New("input error")

	// ErrAPIResponse marks transport failures, empty or malformed model
	// output, and picked items that fail the anti-hallucination guard.
	ErrAPIResponse = errors.New("api response error")
)
