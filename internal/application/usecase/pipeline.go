package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/dto"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
)

// Pipeline holds the domain services shared by every use case. All of them
// are read-only after construction and safe for concurrent use.
type Pipeline struct {
	Scorer     *service.RiskScorer
	Engine     *service.DecisionEngine
	Calibrator *service.ApprovalCalibrator
	Ranker     *service.CompositeUtilityRanker
}

// NewPipeline builds every domain service from loaded configuration.
func NewPipeline(
	approval service.ApprovalConfig,
	preferences service.PreferenceConfig,
	penalties service.MerchantPenaltyConfig,
	logger *slog.Logger,
) *Pipeline {
	weighter := service.NewPreferenceWeighter(preferences, logger)
	calculator := service.NewMerchantPenaltyCalculator(penalties, service.LevenshteinMatcher{}, logger)
	return &Pipeline{
		Scorer:     service.NewRiskScorer(),
		Engine:     service.NewDecisionEngine(),
		Calibrator: service.NewApprovalCalibrator(approval, logger),
		Ranker:     service.NewCompositeUtilityRanker(weighter, calculator, logger),
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordDecision(string, time.Duration) {}
func (nopMetrics) RecordRanking(int, int)               {}
func (nopMetrics) RecordApproval(float64)               {}
func (nopMetrics) RecordRejection(string)               {}

func metricsOrNop(m port.MetricsRecorder) port.MetricsRecorder {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

func clockOrSystem(c port.Clock) port.Clock {
	if c == nil {
		return port.ClockFunc(time.Now)
	}
	return c
}

// buildContext turns a payload into a validated context, counting rejections.
func buildContext(p dto.CheckoutContextPayload, clock port.Clock, metrics port.MetricsRecorder, operation string) (*model.TransactionContext, error) {
	tc, err := p.ToContext(clock.Now())
	if err != nil {
		metrics.RecordRejection(operation)
		return nil, fmt.Errorf("invalid checkout context: %w", err)
	}
	return tc, nil
}

// candidateCards returns the named cards or, when none are named, the whole catalog.
func candidateCards(ctx context.Context, catalog port.CardCatalog, ids []string) ([]model.Card, error) {
	var (
		cards []model.Card
		err   error
	)
	if len(ids) == 0 {
		cards, err = catalog.List(ctx)
	} else {
		cards, err = catalog.Get(ctx, ids...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate cards: %w", err)
	}
	return cards, nil
}
