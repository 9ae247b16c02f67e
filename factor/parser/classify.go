package parser

import (
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/internal/util"
)

// Classify derives factor_type from the entity type and the first
// condition's type.
func Classify(pf *types.ParsedFactor) string {
	if len(pf.Conditions) == 0 {
		switch pf.EntityType {
		case types.EntityPlayer:
			return types.FactorPlayerPerformance
		case types.EntityTeam:
			return types.FactorTeamPerformance
		}
		return types.FactorGeneral
	}

	ct := pf.Conditions[0].Type
	switch pf.EntityType {
	case types.EntityPlayer:
		switch ct {
		case types.ConditionScoring:
			return types.FactorPlayerScoring
		case types.ConditionStat:
			return types.FactorPlayerStatistics
		case types.ConditionAchievement:
			return types.FactorPlayerAchievement
		}
		return types.FactorPlayerPerformance
	case types.EntityTeam:
		switch ct {
		case types.ConditionOutcome:
			return types.FactorTeamResult
		case types.ConditionMargin:
			return types.FactorTeamMargin
		case types.ConditionTotals:
			return types.FactorGameTotal
		case types.ConditionEvent:
			return types.FactorGameEvent
		}
		return types.FactorTeamPerformance
	}

	switch ct {
	case types.ConditionTotals:
		return types.FactorGameTotal
	case types.ConditionOutcome:
		return types.FactorGameOutcome
	case types.ConditionEvent:
		return types.FactorGameEvent
	}
	return types.FactorGeneral
}

// Confidence weights
const (
	confidenceBase         = 0.5
	teamWeight             = 0.1
	playerWeight           = 0.1
	leagueWeight           = 0.05
	conditionBase          = 0.15
	conditionKnownWeight   = 0.02
	conditionValueWeight   = 0.02
	conditionCompareWeight = 0.01
	conditionTimeWeight    = 0.01
	conditionQualityCap    = 0.25
	compoundWeight         = 0.05
	lowFidelityMultiplier  = 0.85
	MaxConfidence          = 0.95
	sharedContextBoost     = 0.02
)

// Score computes the factor's overall confidence. highFidelity is false
// when only pattern matching was available.
func Score(pf *types.ParsedFactor, highFidelity bool) float64 {
	score := confidenceBase
	if pf.Team != "" {
		score += teamWeight
	}
	if pf.Player != "" {
		score += playerWeight
	}
	if pf.League != "" {
		score += leagueWeight
	}

	if len(pf.Conditions) > 0 {
		quality := conditionBase
		for _, c := range pf.Conditions {
			if c.Text != types.UnknownCondition {
				quality += conditionKnownWeight
			}
			if c.Value > 0 {
				quality += conditionValueWeight
			}
			if c.ComparisonType != types.Equal {
				quality += conditionCompareWeight
			}
			if c.TimeFrame != "" {
				quality += conditionTimeWeight
			}
		}
		if quality > conditionQualityCap {
			quality = conditionQualityCap
		}
		score += quality
	}

	if pf.ConditionOperator != types.OperatorNone && len(pf.Conditions) > 1 {
		score += compoundWeight
	}

	if !highFidelity {
		score *= lowFidelityMultiplier
	}
	return util.Clamp(score, 0, MaxConfidence)
}
