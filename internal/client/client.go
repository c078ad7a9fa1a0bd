// Package client calls a running sysinfo server over gRPC.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/go-tangra/go-tangra-sysinfo/internal/convert"
	"github.com/go-tangra/go-tangra-sysinfo/internal/server"
)

// DefaultTimeout bounds calls whose context carries no deadline.
const DefaultTimeout = 30 * time.Second

// Client is a sysinfo.v1.Telemetry client.
type Client struct {
	conn *grpc.ClientConn
}

// New connects to the server at addr. opts are applied after the
// default insecure transport credentials.
func New(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GetCategory returns the server's report for category.
func (c *Client) GetCategory(ctx context.Context, category string) (string, error) {
	out := new(httpbody.HttpBody)
	if err := c.invoke(ctx, server.TelemetryGetCategoryMethod, wrapperspb.String(category), out); err != nil {
		return "", fmt.Errorf("get category %s: %w", category, err)
	}
	return convert.BodyToReport(out), nil
}

// GetSummary returns the server's dashboard summary.
func (c *Client) GetSummary(ctx context.Context) (string, error) {
	out := new(httpbody.HttpBody)
	if err := c.invoke(ctx, server.TelemetryGetSummaryMethod, &emptypb.Empty{}, out); err != nil {
		return "", fmt.Errorf("get summary: %w", err)
	}
	return convert.BodyToReport(out), nil
}

// Refresh asks the server to invalidate its cache.
func (c *Client) Refresh(ctx context.Context) error {
	if err := c.invoke(ctx, server.TelemetryRefreshMethod, &emptypb.Empty{}, &emptypb.Empty{}); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	return c.conn.Invoke(ctx, method, in, out)
}
