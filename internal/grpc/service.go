// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified identity service name.
const ServiceName = "quill.identity.v1.AuthService"

// Identity service methods.
const (
	MethodLogin        = "Login"
	MethodSignup       = "Signup"
	MethodAuthUser     = "AuthUser"
	MethodUsernameUsed = "UsernameUsed"
	MethodEmailUsed    = "EmailUsed"
)

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// LoginRequest carries a username or email and a password.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// SignupRequest carries a new account's fields.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries an issued session token.
type AuthResponse struct {
	Token string `json:"token"`
}

// AuthUserRequest asks for the profile behind a token.
type AuthUserRequest struct {
	Token string `json:"token"`
}

// AuthUserResponse is the profile behind a token.
type AuthUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UsernameUsedRequest asks whether a username is taken.
type UsernameUsedRequest struct {
	Username string `json:"username"`
}

// EmailUsedRequest asks whether an email is taken.
type EmailUsedRequest struct {
	Email string `json:"email"`
}

// UsedResponse reports whether a value is taken.
type UsedResponse struct {
	Used bool `json:"used"`
}

// AuthServiceServer is the server side of the identity service.
type AuthServiceServer interface {
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Signup(context.Context, *SignupRequest) (*AuthResponse, error)
	AuthUser(context.Context, *AuthUserRequest) (*AuthUserResponse, error)
	UsernameUsed(context.Context, *UsernameUsedRequest) (*UsedResponse, error)
	EmailUsed(context.Context, *EmailUsedRequest) (*UsedResponse, error)
}

// RegisterAuthServiceServer registers srv on s. Clients must call with the
// JSON content-subtype.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&authServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		})
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodLogin,
			Handler:    unaryHandler(MethodLogin, AuthServiceServer.Login),
		},
		{
			MethodName: MethodSignup,
			Handler:    unaryHandler(MethodSignup, AuthServiceServer.Signup),
		},
		{
			MethodName: MethodAuthUser,
			Handler:    unaryHandler(MethodAuthUser, AuthServiceServer.AuthUser),
		},
		{
			MethodName: MethodUsernameUsed,
			Handler:    unaryHandler(MethodUsernameUsed, AuthServiceServer.UsernameUsed),
		},
		{
			MethodName: MethodEmailUsed,
			Handler:    unaryHandler(MethodEmailUsed, AuthServiceServer.EmailUsed),
		},
	},
	Metadata: "quill/identity/v1/auth.proto",
}
