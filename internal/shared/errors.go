package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Transfer engine errors
	ErrInvalidPayload  = fmt.Errorf("invalid drag payload")
	ErrUnknownPanel    = fmt.Errorf("unknown panel")
	ErrExhaustedCursor = fmt.Errorf("pagination cursor exhausted")
	ErrStaleTransfer   = fmt.Errorf("stale transfer, retry the drop")
	ErrPartialTransfer = fmt.Errorf("transfer partially applied")
	ErrRemoteOp        = fmt.Errorf("remote operation failed")

	// Cache errors
	ErrCacheMiss = fmt.Errorf("cache miss")
)
