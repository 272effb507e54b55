package grpc

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/gophgate/internal/logging"
	pb "github.com/dmitrijs2005/gophgate/internal/proto"
	"github.com/dmitrijs2005/gophgate/internal/server/guard"
	"github.com/dmitrijs2005/gophgate/internal/server/presence"
	"github.com/segmentio/ksuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Connect runs one presence connection: join, relay inbound chat lines,
// leave when the client hangs up or the transport fails.
func (s *GRPCServer) Connect(stream pb.PresenceConnectServer) error {
	ctx := stream.Context()

	u, err := guard.UserFromContext(ctx)
	if err != nil {
		s.logger.Error(ctx, "presence stream without identity", "error", err)
		return status.Error(codes.Internal, "unexpected error, check server logs")
	}

	connID := ksuid.New().String()
	logCtx := logging.WithFields(ctx, "conn_id", connID)
	outbox := presence.NewQueue(s.outboxSize)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeEvents(logCtx, stream, outbox)
	}()

	if err := s.gateway.Join(ctx, connID, u, outbox); err != nil {
		outbox.Close()
		<-writerDone
		s.logger.Error(logCtx, "join failed", "error", err)
		return status.Error(codes.Internal, "unexpected error, check server logs")
	}

	defer func() {
		s.gateway.Leave(context.WithoutCancel(ctx), connID)
		outbox.Close()
		<-writerDone
	}()

	for {
		frame, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			s.logger.Debug(logCtx, "presence stream closed", "error", err)
			return err
		}

		env := pb.Unmarshal(frame)
		switch env.Event {
		case presence.EventMessageFromClient:
			if err := s.gateway.Relay(ctx, connID, env.Field("message")); err != nil {
				s.logger.Error(logCtx, "relay failed", "error", err)
			}
		default:
			s.logger.Debug(logCtx, "ignoring presence frame", "event", env.Event)
		}
	}
}

// writeEvents drains outbox onto the stream until the outbox is closed.
// After a send failure the remaining events are discarded.
func (s *GRPCServer) writeEvents(ctx context.Context, stream pb.PresenceConnectServer, outbox *presence.Queue) {
	broken := false
	for ev := range outbox.Events() {
		if broken {
			continue
		}
		frame, err := envelopeOf(ev).Marshal()
		if err != nil {
			s.logger.Error(ctx, "encode presence event", "error", err)
			continue
		}
		if err := stream.Send(frame); err != nil {
			s.logger.Debug(ctx, "presence send failed", "error", err)
			broken = true
		}
	}
}

func envelopeOf(ev presence.Event) pb.Envelope {
	switch data := ev.Data.(type) {
	case []string:
		return pb.ClientsUpdated(data)
	case presence.Message:
		return pb.MessageFromServer(data.FullName, data.Message)
	default:
		return pb.Envelope{Event: ev.Name, Data: data}
	}
}
