package main

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/session"
)

// methods that don't require authentication
var publicMethods = map[string]bool{
	v1.Furgo_Register_FullMethodName: true,
	v1.Furgo_Login_FullMethodName:    true,
}

// bearerSession resolves the session from the authorization metadata.
func bearerSession(ctx context.Context, sessions *session.Manager) (*session.Session, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing metadata")
	}
	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return nil, status.Errorf(codes.Unauthenticated, "missing authorization header")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeaders[0], "Bearer"))
	if token == "" {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token")
	}
	s, err := sessions.Authenticate(token)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "unauthenticated: %v", err)
	}
	return s, nil
}

// authUnaryInterceptor puts the caller's session into the context of every
// method except Register and Login.
func authUnaryInterceptor(sessions *session.Manager) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		s, err := bearerSession(ctx, sessions)
		if err != nil {
			return nil, err
		}
		return handler(session.NewContext(ctx, s), req)
	}
}

// authStreamInterceptor is the stream equivalent of authUnaryInterceptor.
func authStreamInterceptor(sessions *session.Manager) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if publicMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		s, err := bearerSession(ss.Context(), sessions)
		if err != nil {
			return err
		}
		wrapped := sessionServerStream{ServerStream: ss, ctx: session.NewContext(ss.Context(), s)}
		return handler(srv, wrapped)
	}
}

// sessionServerStream wraps grpc.ServerStream to override Context()
type sessionServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context (with the session)
func (g sessionServerStream) Context() context.Context { return g.ctx }

// currentSession returns the caller's session, optionally requiring a role.
func currentSession(ctx context.Context, roles ...data.Role) (*session.Session, error) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}
	if len(roles) == 0 {
		return s, nil
	}
	for _, r := range roles {
		if s.Role == r {
			return s, nil
		}
	}
	return nil, status.Errorf(codes.PermissionDenied, "only %s may call this method", roles[0])
}
