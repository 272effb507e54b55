package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/common"
	pb "github.com/dmitrijs2005/gophgate/internal/proto"
	"github.com/dmitrijs2005/gophgate/internal/server/guard"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// identityStream carries the admitted user in its context.
type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context {
	return s.ctx
}

// handshakeToken reads the token from the authentication metadata header.
// Both a bare token and a "Bearer" value are accepted.
func handshakeToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthenticationHeaderName)
	if len(values) == 0 {
		return ""
	}
	if token, ok := guard.BearerToken(values[0]); ok {
		return token
	}
	return values[0]
}

// handshakeInterceptor admits presence streams. A rejected handshake ends
// the stream with an OK status and no frames, so the client only sees the
// connection close.
func (s *GRPCServer) handshakeInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {

	if info.FullMethod != pb.ConnectFullMethod {
		return handler(srv, ss)
	}

	ctx := ss.Context()

	token := handshakeToken(ctx)
	if token == "" {
		s.logger.Warn(ctx, "handshake rejected", "reason", "missing token")
		return nil
	}

	u, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		s.logger.Warn(ctx, "handshake rejected", "error", err)
		return nil
	}

	return handler(srv, &identityStream{ServerStream: ss, ctx: guard.WithUser(ctx, u)})
}
