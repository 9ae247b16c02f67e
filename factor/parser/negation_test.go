package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/qfactor/factor/types"
)

func TestDetectNegationPattern(t *testing.T) {
	tests := []struct {
		name       string
		clause     string
		negated    bool
		term       string
		scope      string
		confidence float64
		method     Method
	}{
		{"plain not", "Chiefs do not win", true, "not", "not win", 0.7, MethodPattern},
		{"contraction", "LeBron doesn't score", true, "doesn't", "doesn't score", 0.7, MethodPattern},
		{"scope modifier lowers confidence", "Chiefs never lose but they fumble", true, "never", "never lose but they fumble", 0.6, MethodPattern},
		{"window limits scope", "Curry fails to make a single three tonight", true, "fails to", "fails to make a single three", 0.7, MethodPattern},
		{"comparator is not negation", "LeBron scores no more than 20 points", false, "", "", 0.7, MethodPattern},
		{"no negation", "Lakers win", false, "", "", 0.7, MethodPattern},
		{"empty", "  ", false, "", "", 0, MethodNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := detectNegationPattern(tt.clause)
			assert.Equal(t, tt.negated, res.IsNegated)
			assert.Equal(t, tt.term, res.Term)
			assert.Equal(t, tt.scope, res.Scope)
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)
			assert.Equal(t, tt.method, res.Method)
		})
	}
}

func TestModifierScope(t *testing.T) {
	clause := "Saka doesn't score but Arsenal win"
	assert.Equal(t, "doesn't score", modifierScope(clause, 5, 12))
	assert.Equal(t, "never scores", modifierScope("Haaland never scores", 8, 13))
}

func TestApplyNegation(t *testing.T) {
	conds := []types.FactorCondition{
		{Text: "points", ComparisonType: types.GreaterThan, Confidence: 0.9},
		{Text: "rebounds", ComparisonType: types.GreaterOrEqual, Confidence: 0.8},
		{Text: "win", ComparisonType: types.Equal, Confidence: 0.5},
		{Text: "unknown", ComparisonType: types.Equal, Confidence: 0.2},
	}
	ApplyNegation(conds)

	assert.Equal(t, types.LessOrEqual, conds[0].ComparisonType)
	assert.InDelta(t, 0.8, conds[0].Confidence, 1e-9)
	assert.Equal(t, types.LessThan, conds[1].ComparisonType)
	assert.InDelta(t, 0.7, conds[1].Confidence, 1e-9)
	assert.Equal(t, types.Equal, conds[2].ComparisonType)
	assert.InDelta(t, 0.2, conds[2].Confidence, 1e-9)
	assert.Equal(t, types.Equal, conds[3].ComparisonType)
	assert.Equal(t, 0.0, conds[3].Confidence)
	for _, c := range conds {
		assert.True(t, c.IsNegated)
	}
}
