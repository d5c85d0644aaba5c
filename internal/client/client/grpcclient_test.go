package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/api"
	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var expires = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

type stubServer struct {
	api.UnimplementedVisualAuthServer

	err      error
	ok       bool
	gotToken string
	gotUser  string
	got      pattern.Pattern
	gotNext  pattern.Pattern
}

func (s *stubServer) token(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(common.SessionTokenHeaderName); len(v) > 0 {
		s.gotToken = v[0]
	}
}

func (s *stubServer) auth(name string) *api.AuthResponse {
	return &api.AuthResponse{
		UserID:       "u-1",
		SessionToken: "tok-1",
		ExpiresAt:    timestamppb.New(expires),
		Profile:      &api.Profile{UserID: "u-1", Username: name, CreatedAt: timestamppb.New(expires.Add(-time.Hour))},
	}
}

func (s *stubServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	s.token(ctx)
	if s.err != nil {
		return nil, s.err
	}
	p, err := req.Pattern.Decode()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.got = p
	return s.auth(req.Username), nil
}

func (s *stubServer) Verify(ctx context.Context, req *api.VerifyRequest) (*api.AuthResponse, error) {
	s.token(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return s.auth(req.Username), nil
}

func (s *stubServer) ChangeCredential(ctx context.Context, req *api.ChangeCredentialRequest) (*api.ChangeCredentialResponse, error) {
	s.token(ctx)
	if s.err != nil {
		return nil, s.err
	}
	s.gotUser = req.UserID
	s.got, _ = req.Current.Decode()
	s.gotNext, _ = req.New.Decode()
	return &api.ChangeCredentialResponse{Ok: s.ok}, nil
}

func (s *stubServer) InvalidateSession(ctx context.Context, req *api.InvalidateSessionRequest) (*emptypb.Empty, error) {
	s.gotToken = req.SessionToken
	return &emptypb.Empty{}, s.err
}

func (s *stubServer) GetSession(ctx context.Context, req *api.GetSessionRequest) (*api.GetSessionResponse, error) {
	s.gotToken, s.gotUser = req.SessionToken, req.UserID
	if s.err != nil {
		return nil, s.err
	}
	return &api.GetSessionResponse{Valid: s.ok, ExpiresAt: timestamppb.New(expires)}, nil
}

func (s *stubServer) GetProfile(ctx context.Context, req *api.GetProfileRequest) (*api.Profile, error) {
	s.token(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return &api.Profile{
		UserID:          req.UserID,
		Username:        "alice",
		CreatedAt:       timestamppb.New(expires),
		LastLogin:       timestamppb.New(expires.Add(time.Minute)),
		ProfileImageURL: "https://img/alice",
	}, nil
}

func (s *stubServer) Ping(ctx context.Context, _ *api.PingRequest) (*api.PingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &api.PingResponse{Status: "OK"}, nil
}

func newTestClient(t *testing.T, token string) (*GRPCClient, *stubServer) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	stub := &stubServer{ok: true}
	api.RegisterVisualAuthServer(srv, stub)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet",
		WithTokenSource(func() string { return token }),
		WithRequestTimeout(5*time.Second),
		WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, stub
}

func TestGRPCClient_RegisterRoundTrip(t *testing.T) {
	c, stub := newTestClient(t, "")

	res, err := c.Register(context.Background(), "alice", pattern.Pattern{{X: 120, Y: 80}})
	require.NoError(t, err)

	assert.Equal(t, pattern.Pattern{{X: 120, Y: 80}}, stub.got)
	assert.Equal(t, "u-1", res.UserID)
	assert.Equal(t, "tok-1", res.Token)
	assert.True(t, res.ExpiresAt.Equal(expires))
	assert.Equal(t, "alice", res.Profile.Username)
	assert.Empty(t, stub.gotToken, "no token attached when the source is empty")
}

func TestGRPCClient_AttachesSessionToken(t *testing.T) {
	c, stub := newTestClient(t, "tok-9")

	p, err := c.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, "tok-9", stub.gotToken)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "https://img/alice", p.ImageURL)
	require.NotNil(t, p.LastLogin)
	assert.True(t, p.LastLogin.Equal(expires.Add(time.Minute)))
}

func TestGRPCClient_ChangeCredential(t *testing.T) {
	c, stub := newTestClient(t, "tok")
	current := pattern.Pattern{{X: 10, Y: 10}, {X: 20, Y: 20}, {X: 30, Y: 30}}
	next := pattern.Pattern{{X: 50, Y: 50}, {X: 60, Y: 60}, {X: 70, Y: 70}}

	require.NoError(t, c.ChangeCredential(context.Background(), "u-1", current, next))
	assert.Equal(t, "u-1", stub.gotUser)
	assert.Equal(t, current, stub.got)
	assert.Equal(t, next, stub.gotNext)

	stub.ok = false
	err := c.ChangeCredential(context.Background(), "u-1", current, next)
	require.ErrorIs(t, err, common.ErrVerificationFailed)

	stub.err = status.Error(codes.PermissionDenied, "verification failed")
	err = c.ChangeCredential(context.Background(), "u-1", current, next)
	require.ErrorIs(t, err, common.ErrVerificationFailed)
}

func TestGRPCClient_SessionCalls(t *testing.T) {
	c, stub := newTestClient(t, "")
	ctx := context.Background()

	st, err := c.GetSession(ctx, "tok-2", "u-2")
	require.NoError(t, err)
	assert.True(t, st.Valid)
	assert.True(t, st.ExpiresAt.Equal(expires))
	assert.Equal(t, "tok-2", stub.gotToken)
	assert.Equal(t, "u-2", stub.gotUser)

	require.NoError(t, c.InvalidateSession(ctx, "tok-3"))
	assert.Equal(t, "tok-3", stub.gotToken)

	require.NoError(t, c.Ping(ctx))
}

func TestGRPCClient_VerifyMapsUnauthenticated(t *testing.T) {
	c, stub := newTestClient(t, "")
	stub.err = status.Error(codes.Unauthenticated, "invalid credentials")

	_, err := c.Verify(context.Background(), "alice", pattern.Pattern{{X: 1, Y: 1}})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestGRPCClient_MapError(t *testing.T) {
	c := &GRPCClient{}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unauthenticated", status.Error(codes.Unauthenticated, "x"), ErrUnauthorized},
		{"permission", status.Error(codes.PermissionDenied, "x"), ErrUnauthorized},
		{"unavailable", status.Error(codes.Unavailable, "x"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "x"), ErrUnavailable},
		{"exists", status.Error(codes.AlreadyExists, "x"), common.ErrUsernameTaken},
		{"exhausted", status.Error(codes.ResourceExhausted, "x"), common.ErrTooManyAttempts},
		{"invalid", status.Error(codes.InvalidArgument, "x"), ErrInvalidArgument},
		{"not found", status.Error(codes.NotFound, "x"), common.ErrorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, c.mapError(tt.in), tt.want)
		})
	}

	require.NoError(t, c.mapError(nil))

	internal := status.Error(codes.Internal, "boom")
	got := c.mapError(internal)
	require.Error(t, got)
	assert.Contains(t, got.Error(), "rpc error")

	plain := errors.New("plain")
	require.ErrorIs(t, c.mapError(plain), plain)
}

func TestGRPCClient_UnreachableServer(t *testing.T) {
	c, err := NewGRPCClient("passthrough:///nowhere",
		WithRequestTimeout(200*time.Millisecond),
		WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return nil, errors.New("dial refused")
		})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}
