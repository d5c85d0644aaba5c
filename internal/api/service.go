package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "clickpass.v1.VisualAuth"

const (
	VisualAuth_Register_FullMethodName          = "/clickpass.v1.VisualAuth/Register"
	VisualAuth_Verify_FullMethodName            = "/clickpass.v1.VisualAuth/Verify"
	VisualAuth_ChangeCredential_FullMethodName  = "/clickpass.v1.VisualAuth/ChangeCredential"
	VisualAuth_InvalidateSession_FullMethodName = "/clickpass.v1.VisualAuth/InvalidateSession"
	VisualAuth_GetSession_FullMethodName        = "/clickpass.v1.VisualAuth/GetSession"
	VisualAuth_GetProfile_FullMethodName        = "/clickpass.v1.VisualAuth/GetProfile"
	VisualAuth_Ping_FullMethodName              = "/clickpass.v1.VisualAuth/Ping"
)

// VisualAuthServer is the server API for the VisualAuth service.
type VisualAuthServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Verify(context.Context, *VerifyRequest) (*AuthResponse, error)
	ChangeCredential(context.Context, *ChangeCredentialRequest) (*ChangeCredentialResponse, error)
	InvalidateSession(context.Context, *InvalidateSessionRequest) (*emptypb.Empty, error)
	GetSession(context.Context, *GetSessionRequest) (*GetSessionResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*Profile, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	mustEmbedUnimplementedVisualAuthServer()
}

// UnimplementedVisualAuthServer must be embedded by implementations.
type UnimplementedVisualAuthServer struct{}

func (UnimplementedVisualAuthServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedVisualAuthServer) Verify(context.Context, *VerifyRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Verify not implemented")
}
func (UnimplementedVisualAuthServer) ChangeCredential(context.Context, *ChangeCredentialRequest) (*ChangeCredentialResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangeCredential not implemented")
}
func (UnimplementedVisualAuthServer) InvalidateSession(context.Context, *InvalidateSessionRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method InvalidateSession not implemented")
}
func (UnimplementedVisualAuthServer) GetSession(context.Context, *GetSessionRequest) (*GetSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSession not implemented")
}
func (UnimplementedVisualAuthServer) GetProfile(context.Context, *GetProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedVisualAuthServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedVisualAuthServer) mustEmbedUnimplementedVisualAuthServer() {}

func RegisterVisualAuthServer(s grpc.ServiceRegistrar, srv VisualAuthServer) {
	s.RegisterService(&VisualAuth_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(VisualAuthServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VisualAuthServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VisualAuthServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// VisualAuth_ServiceDesc is the grpc.ServiceDesc for the VisualAuth service.
var VisualAuth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VisualAuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(VisualAuth_Register_FullMethodName, VisualAuthServer.Register)},
		{MethodName: "Verify", Handler: unaryHandler(VisualAuth_Verify_FullMethodName, VisualAuthServer.Verify)},
		{MethodName: "ChangeCredential", Handler: unaryHandler(VisualAuth_ChangeCredential_FullMethodName, VisualAuthServer.ChangeCredential)},
		{MethodName: "InvalidateSession", Handler: unaryHandler(VisualAuth_InvalidateSession_FullMethodName, VisualAuthServer.InvalidateSession)},
		{MethodName: "GetSession", Handler: unaryHandler(VisualAuth_GetSession_FullMethodName, VisualAuthServer.GetSession)},
		{MethodName: "GetProfile", Handler: unaryHandler(VisualAuth_GetProfile_FullMethodName, VisualAuthServer.GetProfile)},
		{MethodName: "Ping", Handler: unaryHandler(VisualAuth_Ping_FullMethodName, VisualAuthServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clickpass/v1/visual_auth",
}

// VisualAuthClient is the client API for the VisualAuth service. Calls are
// sent with the json content-subtype.
type VisualAuthClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	ChangeCredential(ctx context.Context, in *ChangeCredentialRequest, opts ...grpc.CallOption) (*ChangeCredentialResponse, error)
	InvalidateSession(ctx context.Context, in *InvalidateSessionRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*GetSessionResponse, error)
	GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type visualAuthClient struct {
	cc grpc.ClientConnInterface
}

func NewVisualAuthClient(cc grpc.ClientConnInterface) VisualAuthClient {
	return &visualAuthClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *visualAuthClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, VisualAuth_Register_FullMethodName, in, opts)
}

func (c *visualAuthClient) Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, VisualAuth_Verify_FullMethodName, in, opts)
}

func (c *visualAuthClient) ChangeCredential(ctx context.Context, in *ChangeCredentialRequest, opts ...grpc.CallOption) (*ChangeCredentialResponse, error) {
	return invoke[ChangeCredentialResponse](ctx, c.cc, VisualAuth_ChangeCredential_FullMethodName, in, opts)
}

func (c *visualAuthClient) InvalidateSession(ctx context.Context, in *InvalidateSessionRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, VisualAuth_InvalidateSession_FullMethodName, in, opts)
}

func (c *visualAuthClient) GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*GetSessionResponse, error) {
	return invoke[GetSessionResponse](ctx, c.cc, VisualAuth_GetSession_FullMethodName, in, opts)
}

func (c *visualAuthClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, VisualAuth_GetProfile_FullMethodName, in, opts)
}

func (c *visualAuthClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, VisualAuth_Ping_FullMethodName, in, opts)
}
