package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/qfactor/factor/types"
)

func factorWith(entity types.EntityType, ctypes ...types.ConditionType) *types.ParsedFactor {
	pf := types.NewParsedFactor("")
	pf.EntityType = entity
	for _, ct := range ctypes {
		c := types.NewCondition()
		c.Text = string(ct)
		c.Type = ct
		pf.Conditions = append(pf.Conditions, c)
	}
	return pf
}

func TestClassify(t *testing.T) {
	tests := []struct {
		entity types.EntityType
		ctype  types.ConditionType
		want   string
	}{
		{types.EntityPlayer, types.ConditionScoring, types.FactorPlayerScoring},
		{types.EntityPlayer, types.ConditionStat, types.FactorPlayerStatistics},
		{types.EntityPlayer, types.ConditionAchievement, types.FactorPlayerAchievement},
		{types.EntityPlayer, types.ConditionOutcome, types.FactorPlayerPerformance},
		{types.EntityTeam, types.ConditionOutcome, types.FactorTeamResult},
		{types.EntityTeam, types.ConditionMargin, types.FactorTeamMargin},
		{types.EntityTeam, types.ConditionTotals, types.FactorGameTotal},
		{types.EntityTeam, types.ConditionEvent, types.FactorGameEvent},
		{types.EntityTeam, types.ConditionScoring, types.FactorTeamPerformance},
		{types.EntityUnknown, types.ConditionTotals, types.FactorGameTotal},
		{types.EntityUnknown, types.ConditionOutcome, types.FactorGameOutcome},
		{types.EntityUnknown, types.ConditionEvent, types.FactorGameEvent},
		{types.EntityUnknown, types.ConditionStat, types.FactorGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+string(tt.entity)+"/"+string(tt.ctype), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(factorWith(tt.entity, tt.ctype)))
		})
	}
}

func TestClassifyWithoutConditions(t *testing.T) {
	assert.Equal(t, types.FactorPlayerPerformance, Classify(factorWith(types.EntityPlayer)))
	assert.Equal(t, types.FactorTeamPerformance, Classify(factorWith(types.EntityTeam)))
	assert.Equal(t, types.FactorGeneral, Classify(factorWith(types.EntityUnknown)))
}

func TestClassifyUsesFirstCondition(t *testing.T) {
	pf := factorWith(types.EntityPlayer, types.ConditionStat, types.ConditionScoring)
	assert.Equal(t, types.FactorPlayerStatistics, Classify(pf))
}

func TestScore(t *testing.T) {
	empty := types.NewParsedFactor("")
	assert.InDelta(t, 0.5, Score(empty, true), 1e-9)
	assert.InDelta(t, 0.425, Score(empty, false), 1e-9)

	pf := types.NewParsedFactor("")
	pf.Player = "LeBron James"
	pf.League = "NBA"
	pf.Conditions = []types.FactorCondition{{
		Text: "points", Type: types.ConditionScoring, Value: 25, ComparisonType: types.GreaterThan,
	}}
	assert.InDelta(t, 0.85, Score(pf, true), 1e-9)
	assert.InDelta(t, 0.7225, Score(pf, false), 1e-9)

	pf.Conditions[0].TimeFrame = "quarter"
	assert.InDelta(t, 0.86, Score(pf, true), 1e-9)
}

func TestScoreCapsConditionQuality(t *testing.T) {
	pf := types.NewParsedFactor("")
	for i := 0; i < 10; i++ {
		pf.Conditions = append(pf.Conditions, types.FactorCondition{
			Text: "points", Value: 10, ComparisonType: types.GreaterThan, TimeFrame: "game",
		})
	}
	assert.InDelta(t, 0.75, Score(pf, true), 1e-9)
}

func TestScoreClampsToMax(t *testing.T) {
	pf := types.NewParsedFactor("")
	pf.Player, pf.Team, pf.League = "LeBron James", "Los Angeles Lakers", "NBA"
	pf.ConditionOperator = types.OperatorAnd
	for i := 0; i < 4; i++ {
		pf.Conditions = append(pf.Conditions, types.FactorCondition{
			Text: "points", Value: 10, ComparisonType: types.GreaterThan, TimeFrame: "game",
		})
	}
	assert.Equal(t, MaxConfidence, Score(pf, true))

	pf.ConditionOperator = types.OperatorNone
	assert.InDelta(t, MaxConfidence, Score(pf, true), 1e-9)
}

func TestScoreCompoundNeedsTwoConditions(t *testing.T) {
	pf := factorWith(types.EntityTeam, types.ConditionOutcome)
	pf.ConditionOperator = types.OperatorAnd
	single := Score(pf, true)
	pf.ConditionOperator = types.OperatorNone
	assert.Equal(t, Score(pf, true), single)
}
