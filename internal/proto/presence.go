// Package proto describes the presence gRPC service. Frames are
// google.protobuf.Struct envelopes of the form {"event": name, "data": value},
// so no generated message types are needed.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	PresenceServiceName = "gophgate.presence.v1.Presence"
	ConnectMethodName   = "Connect"
	ConnectFullMethod   = "/" + PresenceServiceName + "/" + ConnectMethodName
)

// PresenceConnectServer is the server side of a Connect stream.
type PresenceConnectServer = grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]

// PresenceConnectClient is the client side of a Connect stream.
type PresenceConnectClient = grpc.BidiStreamingClient[structpb.Struct, structpb.Struct]

// PresenceServer is implemented by the presence transport.
type PresenceServer interface {
	Connect(PresenceConnectServer) error
}

func _Presence_Connect_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(PresenceServer).Connect(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// PresenceServiceDesc is the grpc.ServiceDesc for the presence service.
var PresenceServiceDesc = grpc.ServiceDesc{
	ServiceName: PresenceServiceName,
	HandlerType: (*PresenceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    ConnectMethodName,
			Handler:       _Presence_Connect_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "presence.proto",
}

func RegisterPresenceServer(s grpc.ServiceRegistrar, srv PresenceServer) {
	s.RegisterService(&PresenceServiceDesc, srv)
}

// PresenceClient opens Connect streams.
type PresenceClient interface {
	Connect(ctx context.Context, opts ...grpc.CallOption) (PresenceConnectClient, error)
}

type presenceClient struct {
	cc grpc.ClientConnInterface
}

func NewPresenceClient(cc grpc.ClientConnInterface) PresenceClient {
	return &presenceClient{cc: cc}
}

func (c *presenceClient) Connect(ctx context.Context, opts ...grpc.CallOption) (PresenceConnectClient, error) {
	stream, err := c.cc.NewStream(ctx, &PresenceServiceDesc.Streams[0], ConnectFullMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}, nil
}
