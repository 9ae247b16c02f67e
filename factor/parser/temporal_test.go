package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectTimePattern(t *testing.T) {
	tests := []struct {
		name       string
		clause     string
		frame      string
		position   string
		quantifier string
		value      *TimeValue
		confidence float64
	}{
		{"recent games", "over the last 5 games", "game", "last", "exact", &TimeValue{5, "game"}, 0.85},
		{"quarter with position", "in the fourth quarter", "quarter", "fourth", "", nil, 0.7},
		{"ordinal alias", "in his 2nd half", "half", "second", "", nil, 0.7},
		{"unit supplies frame", "Ohtani strikes out 10 in 3 starts", "game", "", "exact", &TimeValue{3, "game"}, 0.8},
		{"priority order", "in overtime of the game", "overtime", "", "", nil, 0.6},
		{"position needs a frame", "LeBron scores early", "", "", "", nil, 0.4},
		{"nothing temporal", "LeBron scores 30 points", "", "", "", nil, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := detectTime(tt.clause, tokenize(tt.clause), false)
			assert.Equal(t, tt.frame, res.PrimaryFrame)
			assert.Equal(t, tt.position, res.Position)
			assert.Equal(t, tt.quantifier, res.Quantifier)
			assert.Equal(t, tt.value, res.SpecificValue)
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)
			assert.Equal(t, MethodPattern, res.Method)
			assert.Equal(t, tt.frame != "" || tt.value != nil, res.Found())
		})
	}
}

func TestDetectTimeValueSpan(t *testing.T) {
	clause := "Curry makes 5 threes in his last 3 games"
	res := detectTime(clause, tokenize(clause), false)
	require.NotNil(t, res.ValueSpan)
	assert.Equal(t, "3 games", clause[res.ValueSpan.Start:res.ValueSpan.End])
	assert.Equal(t, &TimeValue{3, "game"}, res.SpecificValue)
}

func TestDetectTimePlusIsNotTimeValue(t *testing.T) {
	clause := "Bills win 3+ games"
	res := detectTime(clause, tokenize(clause), false)
	assert.Nil(t, res.SpecificValue)
	assert.Equal(t, "game", res.PrimaryFrame)
}

func TestDetectTimeEmpty(t *testing.T) {
	res := detectTime("", nil, true)
	assert.Equal(t, MethodNone, res.Method)
	assert.False(t, res.Found())
}
