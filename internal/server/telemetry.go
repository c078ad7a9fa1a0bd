package server

import (
	"context"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Full method names of the sysinfo.v1.Telemetry service.
const (
	TelemetryServiceName       = "sysinfo.v1.Telemetry"
	TelemetryGetCategoryMethod = "/sysinfo.v1.Telemetry/GetCategory"
	TelemetryGetSummaryMethod  = "/sysinfo.v1.Telemetry/GetSummary"
	TelemetryRefreshMethod     = "/sysinfo.v1.Telemetry/Refresh"
)

// TelemetryServer is the server API for the sysinfo.v1.Telemetry service.
// Reports travel as text/plain HttpBody messages.
type TelemetryServer interface {
	GetCategory(context.Context, *wrapperspb.StringValue) (*httpbody.HttpBody, error)
	GetSummary(context.Context, *emptypb.Empty) (*httpbody.HttpBody, error)
	Refresh(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// TelemetryServiceDesc describes the service using only well-known and
// googleapis message types.
var TelemetryServiceDesc = grpc.ServiceDesc{
	ServiceName: TelemetryServiceName,
	HandlerType: (*TelemetryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCategory", Handler: getCategoryHandler},
		{MethodName: "GetSummary", Handler: getSummaryHandler},
		{MethodName: "Refresh", Handler: refreshHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sysinfo/v1/telemetry.proto",
}

// RegisterTelemetryServer registers srv on s.
func RegisterTelemetryServer(s grpc.ServiceRegistrar, srv TelemetryServer) {
	s.RegisterService(&TelemetryServiceDesc, srv)
}

func getCategoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TelemetryServer).GetCategory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TelemetryGetCategoryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TelemetryServer).GetCategory(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getSummaryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TelemetryServer).GetSummary(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TelemetryGetSummaryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TelemetryServer).GetSummary(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func refreshHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TelemetryServer).Refresh(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TelemetryRefreshMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TelemetryServer).Refresh(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
