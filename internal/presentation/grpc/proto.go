package grpc

// proto.go defines the gRPC server interface for bib.underwriting.v1.BlanketLoanService.
// Messages are the application DTOs, carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/underwriting/internal/application/dto"
)

const serviceName = "bib.underwriting.v1.BlanketLoanService"

// Wire messages.
type (
	AllocateRequest         = dto.AllocateRequest
	AllocationResponse      = dto.AllocationResponse
	GetAllocationRequest    = dto.GetAllocationRequest
	PropertyMetricsRequest  = dto.PropertyMetricsRequest
	PropertyMetricsResponse = dto.PropertyMetricsResponse
)

// BlanketLoanServiceServer is the server API for BlanketLoanService.
type BlanketLoanServiceServer interface {
	Allocate(context.Context, *AllocateRequest) (*AllocationResponse, error)
	GetAllocation(context.Context, *GetAllocationRequest) (*AllocationResponse, error)
	CalculatePropertyMetrics(context.Context, *PropertyMetricsRequest) (*PropertyMetricsResponse, error)
	mustEmbedUnimplementedBlanketLoanServiceServer()
}

// UnimplementedBlanketLoanServiceServer provides forward-compatible default implementations.
type UnimplementedBlanketLoanServiceServer struct{}

func (UnimplementedBlanketLoanServiceServer) Allocate(context.Context, *AllocateRequest) (*AllocationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Allocate not implemented")
}
func (UnimplementedBlanketLoanServiceServer) GetAllocation(context.Context, *GetAllocationRequest) (*AllocationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAllocation not implemented")
}
func (UnimplementedBlanketLoanServiceServer) CalculatePropertyMetrics(context.Context, *PropertyMetricsRequest) (*PropertyMetricsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CalculatePropertyMetrics not implemented")
}
func (UnimplementedBlanketLoanServiceServer) mustEmbedUnimplementedBlanketLoanServiceServer() {}

// RegisterBlanketLoanServiceServer registers the BlanketLoanServiceServer with the gRPC server.
func RegisterBlanketLoanServiceServer(s grpclib.ServiceRegistrar, srv BlanketLoanServiceServer) {
	s.RegisterService(&_BlanketLoanService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _BlanketLoanService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BlanketLoanServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Allocate", Handler: _BlanketLoanService_Allocate_Handler},                                 //nolint:revive // gRPC handler registration
		{MethodName: "GetAllocation", Handler: _BlanketLoanService_GetAllocation_Handler},                       //nolint:revive // gRPC handler registration
		{MethodName: "CalculatePropertyMetrics", Handler: _BlanketLoanService_CalculatePropertyMetrics_Handler}, //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _BlanketLoanService_Allocate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(AllocateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BlanketLoanServiceServer).Allocate(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/Allocate",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BlanketLoanServiceServer).Allocate(ctx, req.(*AllocateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _BlanketLoanService_GetAllocation_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAllocationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BlanketLoanServiceServer).GetAllocation(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/GetAllocation",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BlanketLoanServiceServer).GetAllocation(ctx, req.(*GetAllocationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _BlanketLoanService_CalculatePropertyMetrics_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(PropertyMetricsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BlanketLoanServiceServer).CalculatePropertyMetrics(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/CalculatePropertyMetrics",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BlanketLoanServiceServer).CalculatePropertyMetrics(ctx, req.(*PropertyMetricsRequest))
	}
	return interceptor(ctx, in, info, handler)
}
