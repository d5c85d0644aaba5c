package client

import "errors"

// Transport-level errors. Credential outcomes are reported with the shared
// sentinels from the common package.
var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
)
