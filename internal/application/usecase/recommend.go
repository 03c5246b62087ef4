package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/dto"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/observability"
)

// Recommend produces the full checkout recommendation: decision, card ranking
// and the approval estimate of the top-ranked card. The context is scored once.
type Recommend struct {
	pipeline *Pipeline
	catalog  port.CardCatalog
	metrics  port.MetricsRecorder
	clock    port.Clock
}

// NewRecommend creates a new Recommend use case.
func NewRecommend(pipeline *Pipeline, catalog port.CardCatalog, metrics port.MetricsRecorder, clock port.Clock) *Recommend {
	return &Recommend{
		pipeline: pipeline,
		catalog:  catalog,
		metrics:  metricsOrNop(metrics),
		clock:    clockOrSystem(clock),
	}
}

// Execute runs the whole pipeline.
func (uc *Recommend) Execute(ctx context.Context, req dto.RecommendRequest) (dto.RecommendResponse, error) {
	ctx, span := observability.StartSpan(ctx, "Recommend")
	defer span.End()
	start := time.Now()

	// 1. Build the context.
	tc, err := buildContext(req.Context, uc.clock, uc.metrics, "recommend")
	if err != nil {
		span.RecordError(err)
		return dto.RecommendResponse{}, err
	}

	// 2. Resolve candidate cards.
	cards, err := candidateCards(ctx, uc.catalog, req.CardIDs)
	if err != nil {
		span.RecordError(err)
		return dto.RecommendResponse{}, err
	}

	// 3. Score once, then decide and rank from the same score.
	score := uc.pipeline.Scorer.Score(tc)
	contract := uc.pipeline.Engine.Decide(tc, score)
	rankings := uc.pipeline.Ranker.Rank(tc, score, cards)

	resp := dto.RecommendResponse{
		RequestID: uuid.NewString(),
		Decision:  contract,
		Rankings:  rankings,
	}

	// 4. Approval estimate for the best card that could be scored.
	if top, ok := topCard(rankings, cards); ok {
		result := uc.pipeline.Calibrator.Calibrate(service.ApprovalFeaturesFromContext(tc, &top))
		uc.metrics.RecordApproval(result.PApproval)
		resp.TopApproval = &dto.ApprovalEstimate{CardID: top.ID, ApprovalResult: result}
	}

	span.SetAttributes(
		observability.MerchantMCC(tc.MCC()),
		observability.CandidateCount(len(cards)),
		observability.FinalScore(score.FinalScore),
		observability.Decision(contract.Decision.String()),
	)
	uc.metrics.RecordDecision(contract.Decision.String(), time.Since(start))
	uc.metrics.RecordRanking(len(rankings), countDegraded(rankings))

	return resp, nil
}

func topCard(rankings []service.UtilityBreakdown, cards []model.Card) (model.Card, bool) {
	for _, r := range rankings {
		if r.Degraded() {
			continue
		}
		for _, c := range cards {
			if c.ID == r.CardID {
				return c, true
			}
		}
	}
	return model.Card{}, false
}
