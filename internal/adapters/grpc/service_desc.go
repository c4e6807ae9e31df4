package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "fleetpulse.v1.Dashboard"

// Full method names, used by clients and interceptors.
const (
	MethodGetSnapshot      = "/" + ServiceName + "/GetSnapshot"
	MethodTriggerRefresh   = "/" + ServiceName + "/TriggerRefresh"
	MethodAcknowledgeAlert = "/" + ServiceName + "/AcknowledgeAlert"
	MethodWatchSnapshots   = "/" + ServiceName + "/WatchSnapshots"
)

// DashboardServer is the server API of fleetpulse.v1.Dashboard. Snapshots
// travel as google.protobuf.Struct carrying the JSON form of the snapshot.
type DashboardServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	TriggerRefresh(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	AcknowledgeAlert(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	WatchSnapshots(*emptypb.Empty, SnapshotStream) error
}

// SnapshotStream is the server side of WatchSnapshots.
type SnapshotStream interface {
	Send(*structpb.Struct) error
	Context() context.Context
}

type snapshotStream struct {
	grpc.ServerStream
}

func (s *snapshotStream) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

// RegisterDashboardServer registers srv on s.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

// DashboardServiceDesc describes fleetpulse.v1.Dashboard without generated code.
var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
		{MethodName: "TriggerRefresh", Handler: triggerRefreshHandler},
		{MethodName: "AcknowledgeAlert", Handler: acknowledgeAlertHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchSnapshots", Handler: watchSnapshotsHandler, ServerStreams: true},
	},
	Metadata: "fleetpulse/v1/dashboard.proto",
}

func getSnapshotHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGetSnapshot}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func triggerRefreshHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).TriggerRefresh(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodTriggerRefresh}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).TriggerRefresh(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func acknowledgeAlertHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).AcknowledgeAlert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodAcknowledgeAlert}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).AcknowledgeAlert(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func watchSnapshotsHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DashboardServer).WatchSnapshots(in, &snapshotStream{stream})
}
