package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/api"
	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// TokenSource yields the session token to attach to outgoing calls, or "".
type TokenSource func() string

type Option func(*GRPCClient)

// WithTokenSource sets where the session token is read from on every call.
func WithTokenSource(ts TokenSource) Option {
	return func(c *GRPCClient) { c.tokenSource = ts }
}

// WithRequestTimeout bounds every call; zero leaves the caller's deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *GRPCClient) { c.timeout = d }
}

// WithDialOptions appends extra grpc.DialOptions (tests use it for bufconn).
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.VisualAuthClient
	tokenSource TokenSource
	timeout     time.Duration
	dialOpts    []grpc.DialOption
}

func withSessionToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SessionTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.tokenSource != nil {
		if token := s.tokenSource(); token != "" {
			ctx = withSessionToken(ctx, token)
		}
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	for _, o := range opts {
		o(c)
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.sessionTokenInterceptor),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewVisualAuthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Register(ctx context.Context, username string, p pattern.Pattern) (*AuthResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Register(ctx, &api.RegisterRequest{Username: username, Pattern: api.NewPattern(p)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return authResult(resp), nil
}

func (s *GRPCClient) Verify(ctx context.Context, username string, p pattern.Pattern) (*AuthResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Verify(ctx, &api.VerifyRequest{Username: username, Pattern: api.NewPattern(p)})
	if err != nil {
		err = s.mapError(err)
		if errors.Is(err, ErrUnauthorized) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	return authResult(resp), nil
}

func (s *GRPCClient) ChangeCredential(ctx context.Context, userID string, current, next pattern.Pattern) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &api.ChangeCredentialRequest{UserID: userID, Current: api.NewPattern(current), New: api.NewPattern(next)}
	resp, err := s.client.ChangeCredential(ctx, req)
	if err != nil {
		if status.Code(err) == codes.PermissionDenied {
			return common.ErrVerificationFailed
		}
		return s.mapError(err)
	}
	if !resp.Ok {
		return common.ErrVerificationFailed
	}
	return nil
}

func (s *GRPCClient) InvalidateSession(ctx context.Context, token string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.InvalidateSession(ctx, &api.InvalidateSessionRequest{SessionToken: token}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetSession(ctx context.Context, token, userID string) (*SessionState, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetSession(ctx, &api.GetSessionRequest{SessionToken: token, UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &SessionState{Valid: resp.Valid, ExpiresAt: asTime(resp.ExpiresAt)}, nil
}

func (s *GRPCClient) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetProfile(ctx, &api.GetProfileRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	p := profile(resp)
	return &p, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return ErrUnavailable
	case codes.AlreadyExists:
		return common.ErrUsernameTaken
	case codes.ResourceExhausted:
		return common.ErrTooManyAttempts
	case codes.InvalidArgument:
		return ErrInvalidArgument
	case codes.NotFound:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func authResult(resp *api.AuthResponse) *AuthResult {
	r := &AuthResult{
		UserID:    resp.UserID,
		Token:     resp.SessionToken,
		ExpiresAt: asTime(resp.ExpiresAt),
	}
	if resp.Profile != nil {
		r.Profile = profile(resp.Profile)
	}
	if r.Profile.UserID == "" {
		r.Profile.UserID = resp.UserID
	}
	return r
}

func profile(p *api.Profile) Profile {
	out := Profile{
		UserID:    p.UserID,
		Username:  p.Username,
		CreatedAt: asTime(p.CreatedAt),
		ImageURL:  p.ProfileImageURL,
	}
	if p.LastLogin != nil {
		t := p.LastLogin.AsTime()
		out.LastLogin = &t
	}
	return out
}

func asTime(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}
