package valueobject_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

func TestDecision_FromScore(t *testing.T) {
	tests := []struct {
		name     string
		expected valueobject.Decision
		score    int
	}{
		{name: "score 0 is DECLINE", expected: valueobject.DecisionDecline, score: 0},
		{name: "score 39 is DECLINE", expected: valueobject.DecisionDecline, score: 39},
		{name: "score 40 is REVIEW", expected: valueobject.DecisionReview, score: 40},
		{name: "score 69 is REVIEW", expected: valueobject.DecisionReview, score: 69},
		{name: "score 70 is APPROVE", expected: valueobject.DecisionApprove, score: 70},
		{name: "score 120 is APPROVE", expected: valueobject.DecisionApprove, score: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := valueobject.DecisionFromScore(tt.score)
			assert.True(t, tt.expected.Equal(result),
				"expected %s for score %d, got %s", tt.expected, tt.score, result)
		})
	}
}

func TestDecision_FromString(t *testing.T) {
	tests := []struct {
		input    string
		expected valueobject.Decision
		wantErr  bool
	}{
		{"APPROVE", valueobject.DecisionApprove, false},
		{"REVIEW", valueobject.DecisionReview, false},
		{"DECLINE", valueobject.DecisionDecline, false},
		{"approve", valueobject.Decision{}, true},
		{"", valueobject.Decision{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := valueobject.DecisionFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(result))
		})
	}
}

func TestDecision_JSON(t *testing.T) {
	type wrapper struct {
		Decision valueobject.Decision `json:"decision"`
	}

	b, err := json.Marshal(wrapper{Decision: valueobject.DecisionReview})
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"REVIEW"}`, string(b))

	var back wrapper
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Decision.Equal(valueobject.DecisionReview))

	require.Error(t, json.Unmarshal([]byte(`{"decision":"MAYBE"}`), &back))
}

func TestDecision_IsZero(t *testing.T) {
	var zero valueobject.Decision
	assert.True(t, zero.IsZero())
	assert.False(t, valueobject.DecisionApprove.IsZero())
}
