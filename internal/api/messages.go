// Package api is the wire contract between the clickpass CLI and the
// authentication backend: message types, the JSON gRPC codec and the
// hand-written VisualAuth service descriptor.
package api

import (
	"fmt"

	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Point is a click in intrinsic image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pattern is the tagged click-pattern payload.
type Pattern struct {
	Kind   string  `json:"kind"`
	Points []Point `json:"points"`
}

// NewPattern tags p for the wire.
func NewPattern(p pattern.Pattern) *Pattern {
	out := &Pattern{Kind: common.PatternKind, Points: make([]Point, len(p))}
	for i, pt := range p {
		out.Points[i] = Point{X: pt.X, Y: pt.Y}
	}
	return out
}

// Decode checks the tag and returns the domain pattern. Length and range
// checks are left to pattern.Validate.
func (p *Pattern) Decode() (pattern.Pattern, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: missing pattern", pattern.ErrMalformedPattern)
	}
	if p.Kind != common.PatternKind {
		return nil, fmt.Errorf("%w: unexpected kind %q", pattern.ErrMalformedPattern, p.Kind)
	}
	out := make(pattern.Pattern, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pattern.Point{X: pt.X, Y: pt.Y}
	}
	return out, nil
}

type Profile struct {
	UserID          string                 `json:"user_id"`
	Username        string                 `json:"username"`
	CreatedAt       *timestamppb.Timestamp `json:"created_at,omitempty"`
	LastLogin       *timestamppb.Timestamp `json:"last_login,omitempty"`
	ProfileImageURL string                 `json:"profile_image_url,omitempty"`
}

type RegisterRequest struct {
	Username string   `json:"username"`
	Pattern  *Pattern `json:"pattern"`
}

type VerifyRequest struct {
	Username string   `json:"username"`
	Pattern  *Pattern `json:"pattern"`
}

// AuthResponse answers both Register and Verify.
type AuthResponse struct {
	UserID       string                 `json:"user_id"`
	SessionToken string                 `json:"session_token"`
	ExpiresAt    *timestamppb.Timestamp `json:"expires_at,omitempty"`
	Profile      *Profile               `json:"profile,omitempty"`
}

type ChangeCredentialRequest struct {
	UserID  string   `json:"user_id"`
	Current *Pattern `json:"current"`
	New     *Pattern `json:"new"`
}

type ChangeCredentialResponse struct {
	Ok bool `json:"ok"`
}

type InvalidateSessionRequest struct {
	SessionToken string `json:"session_token"`
}

type GetSessionRequest struct {
	SessionToken string `json:"session_token"`
	UserID       string `json:"user_id"`
}

type GetSessionResponse struct {
	Valid     bool                   `json:"valid"`
	ExpiresAt *timestamppb.Timestamp `json:"expires_at,omitempty"`
}

type GetProfileRequest struct {
	UserID string `json:"user_id"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
