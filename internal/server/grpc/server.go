// Package grpc exposes the VisualAuth service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/clickpass/internal/api"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"github.com/dmitrijs2005/clickpass/internal/server/models"
	"github.com/dmitrijs2005/clickpass/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the part of services.UserService the handlers use.
type UserService interface {
	Register(ctx context.Context, username string, p pattern.Pattern) (*services.AuthResult, error)
	Verify(ctx context.Context, username string, attempt pattern.Pattern) (*services.AuthResult, error)
	ChangeCredential(ctx context.Context, userID string, current, next pattern.Pattern) error
	GetProfile(ctx context.Context, userID string) (*services.Profile, error)
}

// SessionService is the part of services.SessionService the handlers use.
type SessionService interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
	Get(ctx context.Context, token, userID string) (*services.SessionState, error)
	Invalidate(ctx context.Context, token string) error
}

type GRPCServer struct {
	api.UnimplementedVisualAuthServer
	address  string
	users    UserService
	sessions SessionService
	logger   logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, us UserService, ss SessionService) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		sessions: ss,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.sessionInterceptor))
	api.RegisterVisualAuthServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}
