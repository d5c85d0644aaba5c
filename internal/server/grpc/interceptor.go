package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/api"
	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// protectedMethods require a live session.
var protectedMethods = map[string]struct{}{
	api.VisualAuth_ChangeCredential_FullMethodName: {},
	api.VisualAuth_GetProfile_FullMethodName:       {},
}

func tokenFromContext(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.SessionTokenHeaderName); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// userIDFromContext returns the user authenticated by sessionInterceptor.
func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := protectedMethods[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	token := tokenFromContext(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing session token")
	}

	sess, err := s.sessions.Authenticate(ctx, token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	ctx = logging.ContextWith(ctx, "user_id", sess.UserID)
	return handler(context.WithValue(ctx, userIDKey, sess.UserID), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	ctx = logging.ContextWith(ctx, "request_id", uuid.NewString(), "method", info.FullMethod)
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
