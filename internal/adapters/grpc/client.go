package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// Client calls fleetpulse.v1.Dashboard over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// GetSnapshot fetches the latest snapshot.
func (c *Client) GetSnapshot(ctx context.Context) (domain.DashboardSnapshot, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodGetSnapshot, &emptypb.Empty{}, out); err != nil {
		return domain.DashboardSnapshot{}, err
	}
	return StructToSnapshot(out)
}

// TriggerRefresh requests a refresh cycle.
func (c *Client) TriggerRefresh(ctx context.Context) error {
	return c.conn.Invoke(ctx, MethodTriggerRefresh, &emptypb.Empty{}, new(emptypb.Empty))
}

// AcknowledgeAlert acknowledges one alert.
func (c *Client) AcknowledgeAlert(ctx context.Context, id int64) error {
	in, err := structpb.NewStruct(map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	return c.conn.Invoke(ctx, MethodAcknowledgeAlert, in, new(emptypb.Empty))
}

// WatchSnapshots calls fn for every streamed snapshot until ctx ends or the
// stream fails.
func (c *Client) WatchSnapshots(ctx context.Context, fn func(domain.DashboardSnapshot)) error {
	desc := &DashboardServiceDesc.Streams[0]
	stream, err := c.conn.NewStream(ctx, desc, MethodWatchSnapshots)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		snap, err := StructToSnapshot(msg)
		if err != nil {
			return fmt.Errorf("watch snapshots: %w", err)
		}
		fn(snap)
	}
}
