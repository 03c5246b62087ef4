package valueobject

import "fmt"

// PenaltyOrIncentive tells the payment layer whether to surcharge, suppress a
// surcharge, or leave pricing untouched.
type PenaltyOrIncentive string

const (
	PenaltySurcharge   PenaltyOrIncentive = "surcharge"
	PenaltySuppression PenaltyOrIncentive = "suppression"
	PenaltyNone        PenaltyOrIncentive = "none"
)

// NewPenaltyOrIncentive validates a penalty/incentive token.
func NewPenaltyOrIncentive(s string) (PenaltyOrIncentive, error) {
	switch p := PenaltyOrIncentive(s); p {
	case PenaltySurcharge, PenaltySuppression, PenaltyNone:
		return p, nil
	default:
		return "", fmt.Errorf("invalid penalty or incentive: %q", s)
	}
}

// String returns the token.
func (p PenaltyOrIncentive) String() string {
	return string(p)
}

// Network tokens used for routing hints.
const (
	NetworkVisa       = "visa"
	NetworkMastercard = "mastercard"
	NetworkAmex       = "amex"
	NetworkDiscover   = "discover"
	NetworkAny        = "any"
)
