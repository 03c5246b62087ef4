package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/dto"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/observability"
)

// RankCards ranks candidate cards by composite utility.
type RankCards struct {
	pipeline *Pipeline
	catalog  port.CardCatalog
	metrics  port.MetricsRecorder
	clock    port.Clock
}

// NewRankCards creates a new RankCards use case.
func NewRankCards(pipeline *Pipeline, catalog port.CardCatalog, metrics port.MetricsRecorder, clock port.Clock) *RankCards {
	return &RankCards{
		pipeline: pipeline,
		catalog:  catalog,
		metrics:  metricsOrNop(metrics),
		clock:    clockOrSystem(clock),
	}
}

// Execute resolves the candidates and ranks them.
func (uc *RankCards) Execute(ctx context.Context, req dto.RankCardsRequest) (dto.RankCardsResponse, error) {
	ctx, span := observability.StartSpan(ctx, "RankCards")
	defer span.End()

	// 1. Build the context.
	tc, err := buildContext(req.Context, uc.clock, uc.metrics, "rank")
	if err != nil {
		span.RecordError(err)
		return dto.RankCardsResponse{}, err
	}

	// 2. Resolve candidate cards.
	cards, err := candidateCards(ctx, uc.catalog, req.CardIDs)
	if err != nil {
		span.RecordError(err)
		return dto.RankCardsResponse{}, err
	}

	// 3. Score and rank.
	score := uc.pipeline.Scorer.Score(tc)
	rankings := uc.pipeline.Ranker.Rank(tc, score, cards)

	span.SetAttributes(observability.CandidateCount(len(cards)), observability.FinalScore(score.FinalScore))
	uc.metrics.RecordRanking(len(rankings), countDegraded(rankings))

	return dto.RankCardsResponse{RequestID: uuid.NewString(), Score: score, Rankings: rankings}, nil
}

func countDegraded(rankings []service.UtilityBreakdown) int {
	n := 0
	for _, r := range rankings {
		if r.Degraded() {
			n++
		}
	}
	return n
}
