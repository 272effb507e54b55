package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/common"
	pb "github.com/dmitrijs2005/gophgate/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// PresenceClient opens presence streams on one gRPC connection.
type PresenceClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.PresenceClient
}

// NewPresenceClient dials lazily; extra options are appended to the
// insecure transport credentials.
func NewPresenceClient(endpointURL string, opts ...grpc.DialOption) (*PresenceClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &PresenceClient{endpointURL: endpointURL, conn: conn, client: pb.NewPresenceClient(conn)}, nil
}

// Connect opens a stream authenticated by token. The stream lives until ctx
// is cancelled, Close is called or the server hangs up.
func (c *PresenceClient) Connect(ctx context.Context, token string) (*Stream, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, common.AuthenticationHeaderName, token)

	s, err := c.client.Connect(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return &Stream{s: s}, nil
}

func (c *PresenceClient) Close() error {
	return c.conn.Close()
}

// Stream is one open presence connection.
type Stream struct {
	s pb.PresenceConnectClient
}

// Send posts a chat line.
func (s *Stream) Send(text string) error {
	frame, err := pb.MessageFromClient(text).Marshal()
	if err != nil {
		return err
	}
	return mapError(s.s.Send(frame))
}

// Recv blocks for the next server event. io.EOF means the server closed
// the stream.
func (s *Stream) Recv() (pb.Envelope, error) {
	frame, err := s.s.Recv()
	if err != nil {
		return pb.Envelope{}, mapError(err)
	}
	return pb.Unmarshal(frame), nil
}

// Close tells the server no more messages will be sent.
func (s *Stream) Close() error {
	return s.s.CloseSend()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
