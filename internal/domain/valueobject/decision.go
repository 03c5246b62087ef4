package valueobject

import "fmt"

// Decision is an immutable value object representing the outcome of a checkout decision.
type Decision struct {
	value string
}

var (
	DecisionApprove = Decision{value: "APPROVE"}
	DecisionReview  = Decision{value: "REVIEW"}
	DecisionDecline = Decision{value: "DECLINE"}
)

// Thresholds on the final score that separate the three outcomes.
const (
	ApproveThreshold = 70
	ReviewThreshold  = 40
)

// DecisionFromString reconstructs a decision from its string representation.
func DecisionFromString(s string) (Decision, error) {
	switch s {
	case "APPROVE":
		return DecisionApprove, nil
	case "REVIEW":
		return DecisionReview, nil
	case "DECLINE":
		return DecisionDecline, nil
	default:
		return Decision{}, fmt.Errorf("invalid decision: %s", s)
	}
}

// DecisionFromScore determines the decision from a final score. Higher is safer:
// at or above ApproveThreshold approves, at or above ReviewThreshold reviews.
func DecisionFromScore(finalScore int) Decision {
	switch {
	case finalScore >= ApproveThreshold:
		return DecisionApprove
	case finalScore >= ReviewThreshold:
		return DecisionReview
	default:
		return DecisionDecline
	}
}

// String returns the string representation.
func (d Decision) String() string {
	return d.value
}

// IsZero returns true if the decision has not been set.
func (d Decision) IsZero() bool {
	return d.value == ""
}

// Equal checks equality with another Decision.
func (d Decision) Equal(other Decision) bool {
	return d.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decision) UnmarshalText(b []byte) error {
	parsed, err := DecisionFromString(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
