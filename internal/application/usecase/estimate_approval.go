package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/dto"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/observability"
)

// EstimateApproval runs the two-stage approval calibrator.
type EstimateApproval struct {
	pipeline *Pipeline
	catalog  port.CardCatalog
	metrics  port.MetricsRecorder
	clock    port.Clock
}

// NewEstimateApproval creates a new EstimateApproval use case.
func NewEstimateApproval(pipeline *Pipeline, catalog port.CardCatalog, metrics port.MetricsRecorder, clock port.Clock) *EstimateApproval {
	return &EstimateApproval{
		pipeline: pipeline,
		catalog:  catalog,
		metrics:  metricsOrNop(metrics),
		clock:    clockOrSystem(clock),
	}
}

// Execute estimates from flat features when given, else per candidate card
// for the context. A request with neither estimates the empty context.
func (uc *EstimateApproval) Execute(ctx context.Context, req dto.EstimateApprovalRequest) (dto.EstimateApprovalResponse, error) {
	ctx, span := observability.StartSpan(ctx, "EstimateApproval")
	defer span.End()

	resp := dto.EstimateApprovalResponse{RequestID: uuid.NewString()}

	// 1. Flat features, or no input at all, skip the catalog.
	if req.Features != nil || req.Context == nil {
		var f service.ApprovalFeatures
		if req.Features != nil {
			f = *req.Features
		}
		resp.Estimates = []dto.ApprovalEstimate{uc.estimate("", f)}
		return resp, nil
	}

	// 2. Build the context.
	tc, err := buildContext(*req.Context, uc.clock, uc.metrics, "approval")
	if err != nil {
		span.RecordError(err)
		return dto.EstimateApprovalResponse{}, err
	}

	// 3. Resolve candidate cards.
	cards, err := candidateCards(ctx, uc.catalog, req.CardIDs)
	if err != nil {
		span.RecordError(err)
		return dto.EstimateApprovalResponse{}, err
	}

	// 4. One estimate per card.
	for i := range cards {
		f := service.ApprovalFeaturesFromContext(tc, &cards[i])
		resp.Estimates = append(resp.Estimates, uc.estimate(cards[i].ID, f))
	}
	span.SetAttributes(observability.MerchantMCC(tc.MCC()), observability.CandidateCount(len(cards)))
	return resp, nil
}

func (uc *EstimateApproval) estimate(cardID string, f service.ApprovalFeatures) dto.ApprovalEstimate {
	result := uc.pipeline.Calibrator.Calibrate(f)
	uc.metrics.RecordApproval(result.PApproval)
	return dto.ApprovalEstimate{CardID: cardID, ApprovalResult: result}
}
