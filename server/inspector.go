package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vibecart.Inspector"

// InspectorServer is the server API for the inspector service. Messages
// are protobuf well-known types so no generated code is needed.
type InspectorServer interface {
	// ReadMemory takes {space, address, size} and returns the bytes read.
	ReadMemory(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	// WriteMemory takes {space, address, value}.
	WriteMemory(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GetMapperState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SaveState(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	LoadState(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	// StreamWrites applies a stream of WriteMemory requests and answers
	// with {count} once the client closes its side.
	StreamWrites(grpc.ClientStreamingServer[structpb.Struct, structpb.Struct]) error
}

// RegisterInspectorServer registers srv with s.
func RegisterInspectorServer(s grpc.ServiceRegistrar, srv InspectorServer) {
	s.RegisterService(&inspectorServiceDesc, srv)
}

var inspectorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InspectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReadMemory", Handler: unaryHandler("ReadMemory", InspectorServer.ReadMemory)},
		{MethodName: "WriteMemory", Handler: unaryHandler("WriteMemory", InspectorServer.WriteMemory)},
		{MethodName: "GetMapperState", Handler: unaryHandler("GetMapperState", InspectorServer.GetMapperState)},
		{MethodName: "SaveState", Handler: unaryHandler("SaveState", InspectorServer.SaveState)},
		{MethodName: "LoadState", Handler: unaryHandler("LoadState", InspectorServer.LoadState)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamWrites",
			Handler:       streamWritesHandler,
			ClientStreams: true,
		},
	},
	Metadata: "vibecart/inspector",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Res any](method string, call func(InspectorServer, context.Context, *Req) (*Res, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InspectorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InspectorServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func streamWritesHandler(srv any, stream grpc.ServerStream) error {
	return srv.(InspectorServer).StreamWrites(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}
