package valueobject

import "fmt"

// ActionType classifies a business rule that fired during decisioning.
type ActionType string

const (
	ActionFraudScreen      ActionType = "FRAUD_SCREEN"
	ActionVelocityCheck    ActionType = "VELOCITY_CHECK"
	ActionRiskReview       ActionType = "RISK_REVIEW"
	ActionHighTicketReview ActionType = "HIGH_TICKET_REVIEW"
	ActionLoyaltyBoost     ActionType = "LOYALTY_BOOST"
	ActionNetworkRouting   ActionType = "NETWORK_ROUTING"
)

var validActionTypes = map[ActionType]bool{
	ActionFraudScreen:      true,
	ActionVelocityCheck:    true,
	ActionRiskReview:       true,
	ActionHighTicketReview: true,
	ActionLoyaltyBoost:     true,
	ActionNetworkRouting:   true,
}

// NewActionType creates a validated ActionType from a string.
func NewActionType(s string) (ActionType, error) {
	at := ActionType(s)
	if !validActionTypes[at] {
		return "", fmt.Errorf("invalid action type: %q", s)
	}
	return at, nil
}

// String returns the string representation of the ActionType.
func (a ActionType) String() string {
	return string(a)
}

// IsRisk returns true for actions raised by a risk penalty.
func (a ActionType) IsRisk() bool {
	switch a {
	case ActionFraudScreen, ActionVelocityCheck, ActionRiskReview, ActionHighTicketReview:
		return true
	default:
		return false
	}
}
