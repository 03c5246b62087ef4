package dto

import (
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
)

// DecisionRequest is the input of the DecideTransaction use case.
type DecisionRequest struct {
	Context CheckoutContextPayload `json:"context"`
}

// DecisionResponse wraps the decision contract with a request id.
type DecisionResponse struct {
	RequestID string `json:"request_id"`
	service.DecisionContract
}

// RankCardsRequest ranks the named cards, or the whole catalog when CardIDs is empty.
type RankCardsRequest struct {
	Context CheckoutContextPayload `json:"context"`
	CardIDs []string               `json:"card_ids,omitempty"`
}

// RankCardsResponse carries the score the ranking used and the ranked cards.
type RankCardsResponse struct {
	RequestID string                     `json:"request_id"`
	Score     service.ScoreResult        `json:"score_result"`
	Rankings  []service.UtilityBreakdown `json:"rankings"`
}

// EstimateApprovalRequest estimates approval odds from flat features when
// Features is set, otherwise per card for the given context.
type EstimateApprovalRequest struct {
	Context  *CheckoutContextPayload   `json:"context,omitempty"`
	Features *service.ApprovalFeatures `json:"features,omitempty"`
	CardIDs  []string                  `json:"card_ids,omitempty"`
}

// ApprovalEstimate is one approval result. CardID is empty for feature-only requests.
type ApprovalEstimate struct {
	CardID string `json:"card_id,omitempty"`
	service.ApprovalResult
}

// EstimateApprovalResponse lists estimates in card order.
type EstimateApprovalResponse struct {
	RequestID string             `json:"request_id"`
	Estimates []ApprovalEstimate `json:"estimates"`
}

// RecommendRequest asks for the full checkout recommendation.
type RecommendRequest struct {
	Context CheckoutContextPayload `json:"context"`
	CardIDs []string               `json:"card_ids,omitempty"`
}

// RecommendResponse combines decision, ranking and the approval estimate for
// the top-ranked card.
type RecommendResponse struct {
	RequestID   string                     `json:"request_id"`
	Decision    service.DecisionContract   `json:"decision"`
	Rankings    []service.UtilityBreakdown `json:"rankings"`
	TopApproval *ApprovalEstimate          `json:"top_card_approval,omitempty"`
}
