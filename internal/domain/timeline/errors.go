package timeline

import "errors"

// Sentinel error kinds for this package.
var (
	ErrMalformedJSON = errors.New("malformed schedule JSON")
)
