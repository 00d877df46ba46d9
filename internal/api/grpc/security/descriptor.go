package security

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "catpoint.security.v1.SecurityService"

// Full method names, as used by clients and interceptors.
const (
	GetStatusMethod              = "/" + ServiceName + "/GetStatus"
	SetArmingStatusMethod        = "/" + ServiceName + "/SetArmingStatus"
	AddSensorMethod              = "/" + ServiceName + "/AddSensor"
	RemoveSensorMethod           = "/" + ServiceName + "/RemoveSensor"
	ChangeSensorActivationMethod = "/" + ServiceName + "/ChangeSensorActivation"
	ProcessImageMethod           = "/" + ServiceName + "/ProcessImage"
)

// SecurityServiceServer is the server API for the security service.
type SecurityServiceServer interface {
	// GetStatus returns statuses and sensors.
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// SetArmingStatus takes the arming status name.
	SetArmingStatus(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// AddSensor takes {name, type} and returns the stored sensor.
	AddSensor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// RemoveSensor takes the sensor ID.
	RemoveSensor(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	// ChangeSensorActivation takes {id, active}.
	ChangeSensorActivation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// ProcessImage takes an encoded camera frame.
	ProcessImage(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error)
}

// RegisterSecurityServiceServer registers srv on registrar.
func RegisterSecurityServiceServer(registrar grpc.ServiceRegistrar, srv SecurityServiceServer) {
	registrar.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecurityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler: unaryHandler(GetStatusMethod, newMessage[emptypb.Empty],
				SecurityServiceServer.GetStatus),
		},
		{
			MethodName: "SetArmingStatus",
			Handler: unaryHandler(SetArmingStatusMethod, newMessage[wrapperspb.StringValue],
				SecurityServiceServer.SetArmingStatus),
		},
		{
			MethodName: "AddSensor",
			Handler: unaryHandler(AddSensorMethod, newMessage[structpb.Struct],
				SecurityServiceServer.AddSensor),
		},
		{
			MethodName: "RemoveSensor",
			Handler: unaryHandler(RemoveSensorMethod, newMessage[wrapperspb.StringValue],
				SecurityServiceServer.RemoveSensor),
		},
		{
			MethodName: "ChangeSensorActivation",
			Handler: unaryHandler(ChangeSensorActivationMethod, newMessage[structpb.Struct],
				SecurityServiceServer.ChangeSensorActivation),
		},
		{
			MethodName: "ProcessImage",
			Handler: unaryHandler(ProcessImageMethod, newMessage[wrapperspb.BytesValue],
				SecurityServiceServer.ProcessImage),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catpoint/security/v1/security.proto",
}

func newMessage[T any]() *T {
	return new(T)
}

// unaryHandler adapts a typed server method into a grpc.MethodHandler,
// the same shape protoc-gen-go-grpc emits for every unary method.
func unaryHandler[Req, Resp proto.Message](
	fullMethod string,
	newRequest func() Req,
	call func(SecurityServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(SecurityServiceServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(Req)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}
