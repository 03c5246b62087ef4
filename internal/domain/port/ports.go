package port

import (
	"context"
	"errors"
	"time"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
)

// ErrCardNotFound is returned when a requested card id is not in the catalog.
var ErrCardNotFound = errors.New("card not found")

// CardCatalog is the read-only lookup of candidate card metadata.
type CardCatalog interface {
	// List returns every card in catalog order.
	List(ctx context.Context) ([]model.Card, error)

	// Get returns the named cards in the requested order. Unknown ids yield ErrCardNotFound.
	Get(ctx context.Context, ids ...string) ([]model.Card, error)
}

// MetricsRecorder receives pipeline measurements.
type MetricsRecorder interface {
	RecordDecision(decision string, elapsed time.Duration)
	RecordRanking(cards, degraded int)
	RecordApproval(probability float64)
	RecordRejection(operation string)
}

// Clock supplies the receive time used when a payload carries no timestamp.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
