package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/dto"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/observability"
)

// DecideTransaction scores a checkout context and renders the decision contract.
type DecideTransaction struct {
	pipeline *Pipeline
	metrics  port.MetricsRecorder
	clock    port.Clock
}

// NewDecideTransaction creates a new DecideTransaction use case. metrics and
// clock may be nil.
func NewDecideTransaction(pipeline *Pipeline, metrics port.MetricsRecorder, clock port.Clock) *DecideTransaction {
	return &DecideTransaction{
		pipeline: pipeline,
		metrics:  metricsOrNop(metrics),
		clock:    clockOrSystem(clock),
	}
}

// Execute validates the context, scores it and decides.
func (uc *DecideTransaction) Execute(ctx context.Context, req dto.DecisionRequest) (dto.DecisionResponse, error) {
	_, span := observability.StartSpan(ctx, "DecideTransaction")
	defer span.End()
	start := time.Now()

	// 1. Build the immutable context; malformed input is rejected here.
	tc, err := buildContext(req.Context, uc.clock, uc.metrics, "decide")
	if err != nil {
		span.RecordError(err)
		return dto.DecisionResponse{}, err
	}

	// 2. Score.
	score := uc.pipeline.Scorer.Score(tc)

	// 3. Decide.
	contract := uc.pipeline.Engine.Decide(tc, score)

	span.SetAttributes(
		observability.MerchantMCC(tc.MCC()),
		observability.FinalScore(score.FinalScore),
		observability.Decision(contract.Decision.String()),
	)
	uc.metrics.RecordDecision(contract.Decision.String(), time.Since(start))

	return dto.DecisionResponse{RequestID: uuid.NewString(), DecisionContract: contract}, nil
}
