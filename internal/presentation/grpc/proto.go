package grpc

// proto.go defines the gRPC server interface for
// altwallet.checkout.v1.CheckoutDecisionService. Messages travel as JSON under the
// "json" content subtype and share their shape with the application DTOs.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "altwallet.checkout.v1.CheckoutDecisionService"

// Message types.
type (
	DecideRequest            = dto.DecisionRequest
	DecideResponse           = dto.DecisionResponse
	RankCardsRequest         = dto.RankCardsRequest
	RankCardsResponse        = dto.RankCardsResponse
	EstimateApprovalRequest  = dto.EstimateApprovalRequest
	EstimateApprovalResponse = dto.EstimateApprovalResponse
	RecommendRequest         = dto.RecommendRequest
	RecommendResponse        = dto.RecommendResponse
)

// CheckoutDecisionServiceServer is the server API for CheckoutDecisionService.
type CheckoutDecisionServiceServer interface {
	Decide(context.Context, *DecideRequest) (*DecideResponse, error)
	RankCards(context.Context, *RankCardsRequest) (*RankCardsResponse, error)
	EstimateApproval(context.Context, *EstimateApprovalRequest) (*EstimateApprovalResponse, error)
	Recommend(context.Context, *RecommendRequest) (*RecommendResponse, error)
	mustEmbedUnimplementedCheckoutDecisionServiceServer()
}

// UnimplementedCheckoutDecisionServiceServer provides forward-compatible default implementations.
type UnimplementedCheckoutDecisionServiceServer struct{}

func (UnimplementedCheckoutDecisionServiceServer) Decide(context.Context, *DecideRequest) (*DecideResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Decide not implemented")
}
func (UnimplementedCheckoutDecisionServiceServer) RankCards(context.Context, *RankCardsRequest) (*RankCardsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RankCards not implemented")
}
func (UnimplementedCheckoutDecisionServiceServer) EstimateApproval(context.Context, *EstimateApprovalRequest) (*EstimateApprovalResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EstimateApproval not implemented")
}
func (UnimplementedCheckoutDecisionServiceServer) Recommend(context.Context, *RecommendRequest) (*RecommendResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Recommend not implemented")
}
func (UnimplementedCheckoutDecisionServiceServer) mustEmbedUnimplementedCheckoutDecisionServiceServer() {
}

// RegisterCheckoutDecisionServiceServer registers the server with the gRPC server.
func RegisterCheckoutDecisionServiceServer(s grpclib.ServiceRegistrar, srv CheckoutDecisionServiceServer) {
	s.RegisterService(&checkoutDecisionServiceDesc, srv)
}

var checkoutDecisionServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CheckoutDecisionServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Decide", Handler: unaryHandler("Decide", CheckoutDecisionServiceServer.Decide)},
		{MethodName: "RankCards", Handler: unaryHandler("RankCards", CheckoutDecisionServiceServer.RankCards)},
		{MethodName: "EstimateApproval", Handler: unaryHandler("EstimateApproval", CheckoutDecisionServiceServer.EstimateApproval)},
		{MethodName: "Recommend", Handler: unaryHandler("Recommend", CheckoutDecisionServiceServer.Recommend)},
	},
	Streams: []grpclib.StreamDesc{},
}

// methodHandler matches the signature grpc expects in MethodDesc.Handler.
type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error)

// unaryHandler adapts a typed method to a methodHandler, running interceptors.
func unaryHandler[Req, Resp any](
	method string,
	call func(CheckoutDecisionServiceServer, context.Context, *Req) (*Resp, error),
) methodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "malformed %s request: %v", method, err)
		}
		s := srv.(CheckoutDecisionServiceServer)
		if interceptor == nil {
			return call(s, ctx, req)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, req, info, func(ctx context.Context, r any) (any, error) {
			return call(s, ctx, r.(*Req))
		})
	}
}
