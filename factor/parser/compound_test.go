package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/qfactor/factor/types"
)

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		operator types.Operator
		clauses  []string
	}{
		{"and", "Lakers win and Celtics lose", types.OperatorAnd, []string{"Lakers win", "Celtics lose"}},
		{"or", "Curry scores 40 or Warriors lose", types.OperatorOr, []string{"Curry scores 40", "Warriors lose"}},
		{"but", "Durant scores 30 but Suns lose", types.OperatorBut, []string{"Durant scores 30", "Suns lose"}},
		{"if", "Curry scores 30 points if Warriors win", types.OperatorIf, []string{"Curry scores 30 points", "Warriors win"}},
		{"multi-word phrase", "Kelce catches 8 passes as well as Chiefs win", types.OperatorAnd, []string{"Kelce catches 8 passes", "Chiefs win"}},
		{"every occurrence", "Lakers win and Celtics lose and Heat cover", types.OperatorAnd, []string{"Lakers win", "Celtics lose", "Heat cover"}},
		{"priority beats position", "Lakers win or Celtics lose and Heat cover", types.OperatorAnd, []string{"Lakers win or Celtics lose", "Heat cover"}},
		{"comparator is not a conjunction", "LeBron scores 25 or more points", types.OperatorNone, []string{"LeBron scores 25 or more points"}},
		{"no operator", "Chiefs win", types.OperatorNone, []string{"Chiefs win"}},
		{"leading conjunction", "and Lakers win", types.OperatorNone, []string{"and Lakers win"}},
		{"trims punctuation", "Lakers win, and Celtics lose;", types.OperatorAnd, []string{"Lakers win", "Celtics lose"}},
		{"word inside word", "Brandon scores 20", types.OperatorNone, []string{"Brandon scores 20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := splitPattern(tt.text)
			assert.Equal(t, tt.operator, res.Operator)
			assert.Equal(t, tt.clauses, res.Clauses)
			assert.Equal(t, MethodPattern, res.Method)
		})
	}
}

func TestSplitAtBoundariesUsesFirstPosition(t *testing.T) {
	text := "Lakers win or Celtics lose and Heat cover"
	cuts := []boundary{
		{Span{27, 30}, types.OperatorAnd},
		{Span{11, 13}, types.OperatorOr},
	}
	res := splitAtBoundaries(text, cuts, MethodSyntax)
	assert.Equal(t, types.OperatorOr, res.Operator)
	assert.Equal(t, []string{"Lakers win", "Celtics lose", "Heat cover"}, res.Clauses)
	assert.Equal(t, MethodSyntax, res.Method)
}
