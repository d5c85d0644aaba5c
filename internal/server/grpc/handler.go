package grpc

import (
	"context"

	"github.com/dmitrijs2005/clickpass/internal/api"
	"github.com/dmitrijs2005/clickpass/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	p, err := req.Pattern.Decode()
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	result, err := s.users.Register(ctx, req.Username, p)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return authResponse(result), nil
}

func (s *GRPCServer) Verify(ctx context.Context, req *api.VerifyRequest) (*api.AuthResponse, error) {
	p, err := req.Pattern.Decode()
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	result, err := s.users.Verify(ctx, req.Username, p)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return authResponse(result), nil
}

func (s *GRPCServer) ChangeCredential(ctx context.Context, req *api.ChangeCredentialRequest) (*api.ChangeCredentialResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing session")
	}
	if req.UserID != "" && req.UserID != userID {
		return nil, status.Error(codes.PermissionDenied, "session does not belong to user")
	}

	current, err := req.Current.Decode()
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	next, err := req.New.Decode()
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.users.ChangeCredential(ctx, userID, current, next); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ChangeCredentialResponse{Ok: true}, nil
}

func (s *GRPCServer) InvalidateSession(ctx context.Context, req *api.InvalidateSessionRequest) (*emptypb.Empty, error) {
	token := req.SessionToken
	if token == "" {
		token = tokenFromContext(ctx)
	}
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetSession(ctx context.Context, req *api.GetSessionRequest) (*api.GetSessionResponse, error) {
	state, err := s.sessions.Get(ctx, req.SessionToken, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &api.GetSessionResponse{Valid: state.Valid}
	if state.Valid {
		resp.ExpiresAt = timestamppb.New(state.ExpiresAt)
	}
	return resp, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *api.GetProfileRequest) (*api.Profile, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing session")
	}
	if req.UserID != "" && req.UserID != userID {
		return nil, status.Error(codes.PermissionDenied, "session does not belong to user")
	}

	p, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return profileMessage(p), nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func authResponse(r *services.AuthResult) *api.AuthResponse {
	return &api.AuthResponse{
		UserID:       r.Profile.User.ID,
		SessionToken: r.Session.Token,
		ExpiresAt:    timestamppb.New(r.Session.Session.ExpiresAt),
		Profile:      profileMessage(r.Profile),
	}
}

func profileMessage(p *services.Profile) *api.Profile {
	msg := &api.Profile{
		UserID:          p.User.ID,
		Username:        p.User.UserName,
		CreatedAt:       timestamppb.New(p.User.CreatedAt),
		ProfileImageURL: p.ImageURL,
	}
	if p.User.LastLogin != nil {
		msg.LastLogin = timestamppb.New(*p.User.LastLogin)
	}
	return msg
}
