// Package common contains shared constants and sentinel errors used across
// clickpass components.
package common

// SessionTokenHeaderName is the gRPC metadata key used to carry the
// session token on outbound requests.
const SessionTokenHeaderName = "session_token"

// PatternKind tags click patterns crossing the RPC boundary. A payload with
// any other kind is rejected before it reaches the matcher.
const PatternKind = "click_pattern/v1"
