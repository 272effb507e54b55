// Package grpc exposes the presence gateway as a bidirectional gRPC stream.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophgate/internal/logging"
	pb "github.com/dmitrijs2005/gophgate/internal/proto"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/presence"
	"google.golang.org/grpc"
)

// TokenResolver turns a handshake token into an admitted user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

type GRPCServer struct {
	address    string
	resolver   TokenResolver
	gateway    *presence.Gateway
	outboxSize int
	logger     logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, r TokenResolver, gw *presence.Gateway, outboxSize int) (*GRPCServer, error) {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		resolver:   r,
		gateway:    gw,
		outboxSize: outboxSize,
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	srv := grpc.NewServer(grpc.ChainStreamInterceptor(s.handshakeInterceptor))
	pb.RegisterPresenceServer(srv, s)

	done := make(chan struct{})
	defer close(done)
	go s.stopOnCancel(ctx, srv, done)

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

type stopper interface {
	Stop()
}

// stopOnCancel stops srv once ctx is cancelled. It returns without stopping
// when done closes first, so a failed Serve does not leave it parked on ctx.
func (s *GRPCServer) stopOnCancel(ctx context.Context, srv stopper, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.Stop()
	case <-done:
	}
}
