package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// GrpcServer implements DashboardServer on top of the dashboard service.
type GrpcServer struct {
	service ports.DashboardService
	logger  *slog.Logger
}

// NewGrpcServer creates a grpc.Server with the dashboard service registered.
func NewGrpcServer(svc ports.DashboardService, opts ...grpc.ServerOption) *grpc.Server {
	logger := slog.Default().With("component", "grpc_server")
	opts = append(opts,
		grpc.ChainUnaryInterceptor(unaryLogger(logger)),
		grpc.ChainStreamInterceptor(streamLogger(logger)),
	)
	s := grpc.NewServer(opts...)
	RegisterDashboardServer(s, &GrpcServer{service: svc, logger: logger})
	return s
}

func (s *GrpcServer) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, ok := s.service.Latest()
	if !ok {
		var err error
		if snap, err = s.service.Refresh(ctx); err != nil {
			return nil, toStatus(err)
		}
	}
	return SnapshotToStruct(snap)
}

func (s *GrpcServer) TriggerRefresh(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.TriggerRefresh()
	return &emptypb.Empty{}, nil
}

// AcknowledgeAlert expects {"id": <number>}.
func (s *GrpcServer) AcknowledgeAlert(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	v, ok := req.GetFields()["id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing alert id")
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || num.NumberValue != float64(int64(num.NumberValue)) {
		return nil, status.Error(codes.InvalidArgument, "alert id must be an integer")
	}

	if err := s.service.AcknowledgeAlert(ctx, int64(num.NumberValue)); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// WatchSnapshots streams every published snapshot until the client leaves.
// The stream counts as an observer, so it keeps auto-refresh running.
func (s *GrpcServer) WatchSnapshots(_ *emptypb.Empty, stream SnapshotStream) error {
	sub := s.service.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case snap, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			msg, err := SnapshotToStruct(snap)
			if err != nil {
				return err
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// SnapshotToStruct converts a snapshot through its JSON form.
func SnapshotToStruct(snap domain.DashboardSnapshot) (*structpb.Struct, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	return out, nil
}

// StructToSnapshot is the inverse of SnapshotToStruct.
func StructToSnapshot(in *structpb.Struct) (domain.DashboardSnapshot, error) {
	var snap domain.DashboardSnapshot
	data, err := protojson.Marshal(in)
	if err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAlertID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrAlertNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrSchedulerStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func unaryLogger(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("gRPC call", "method", info.FullMethod, "code", status.Code(err), "duration", time.Since(start))
		return resp, err
	}
}

func streamLogger(logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		logger.Info("gRPC stream opened", "method", info.FullMethod)
		err := handler(srv, ss)
		logger.Info("gRPC stream closed", "method", info.FullMethod, "code", status.Code(err))
		return err
	}
}
