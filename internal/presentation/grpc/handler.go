package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/usecase"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
)

// Compile-time assertion that CheckoutHandler implements CheckoutDecisionServiceServer.
var _ CheckoutDecisionServiceServer = (*CheckoutHandler)(nil)

// CheckoutHandler implements the gRPC CheckoutDecisionServiceServer interface.
type CheckoutHandler struct {
	UnimplementedCheckoutDecisionServiceServer
	decide    *usecase.DecideTransaction
	rank      *usecase.RankCards
	approval  *usecase.EstimateApproval
	recommend *usecase.Recommend
	logger    *slog.Logger
}

// NewCheckoutHandler creates a new gRPC handler.
func NewCheckoutHandler(
	decide *usecase.DecideTransaction,
	rank *usecase.RankCards,
	approval *usecase.EstimateApproval,
	recommend *usecase.Recommend,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		decide:    decide,
		rank:      rank,
		approval:  approval,
		recommend: recommend,
		logger:    logger,
	}
}

// Decide handles a checkout decision request.
func (h *CheckoutHandler) Decide(ctx context.Context, req *DecideRequest) (*DecideResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := h.decide.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus("Decide", err)
	}
	h.logger.Info("checkout decided",
		slog.String("request_id", resp.RequestID),
		slog.String("decision", resp.Decision.String()),
		slog.Int("final_score", resp.Score.FinalScore),
	)
	return &resp, nil
}

// RankCards handles a card ranking request.
func (h *CheckoutHandler) RankCards(ctx context.Context, req *RankCardsRequest) (*RankCardsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := h.rank.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus("RankCards", err)
	}
	return &resp, nil
}

// EstimateApproval handles an approval probability request.
func (h *CheckoutHandler) EstimateApproval(ctx context.Context, req *EstimateApprovalRequest) (*EstimateApprovalResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := h.approval.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus("EstimateApproval", err)
	}
	return &resp, nil
}

// Recommend handles a full recommendation request.
func (h *CheckoutHandler) Recommend(ctx context.Context, req *RecommendRequest) (*RecommendResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := h.recommend.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus("Recommend", err)
	}
	return &resp, nil
}

// toStatus maps use case errors to gRPC codes. Only unexpected failures are
// logged at error level and their detail is not returned to the caller.
func (h *CheckoutHandler) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidContext), errors.Is(err, model.ErrInvalidCard):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrCardNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		h.logger.Error("checkout request failed",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return status.Error(codes.Internal, "internal error")
	}
}
