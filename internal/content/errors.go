package content

import "errors"

var (
	ErrUpstream        = errors.New("content api request failed")
	ErrUnauthorized    = errors.New("content api rejected the access token")
	ErrNoMasterRef     = errors.New("content api returned no master ref")
	ErrOrderingMissing = errors.New("content ordering document not found")
	ErrCacheMiss       = errors.New("content result not cached")
)
