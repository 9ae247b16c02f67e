// Package types defines the structured output of the factor parser.
package types

import (
	"time"
)

// ConditionType is the semantic category of a condition. It drives factor
// classification and confidence weighting.
type ConditionType string

const (
	ConditionScoring     ConditionType = "scoring"
	ConditionStat        ConditionType = "stat"
	ConditionAchievement ConditionType = "achievement"
	ConditionOutcome     ConditionType = "outcome"
	ConditionMargin      ConditionType = "margin"
	ConditionTotals      ConditionType = "totals"
	ConditionEvent       ConditionType = "event"
	ConditionUnknown     ConditionType = "unknown"
)

// ValidConditionType reports whether t is one of the known categories
func ValidConditionType(t ConditionType) bool {
	switch t {
	case ConditionScoring, ConditionStat, ConditionAchievement, ConditionOutcome,
		ConditionMargin, ConditionTotals, ConditionEvent, ConditionUnknown:
		return true
	}
	return false
}

// Comparison is the comparator applied between a stat and its threshold
type Comparison string

const (
	GreaterThan    Comparison = ">"
	LessThan       Comparison = "<"
	GreaterOrEqual Comparison = ">="
	LessOrEqual    Comparison = "<="
	Equal          Comparison = "="
)

// Invert returns the logical complement used when a clause is negated.
// Equality has no clean complement and is returned unchanged.
func (c Comparison) Invert() Comparison {
	switch c {
	case GreaterThan:
		return LessOrEqual
	case LessOrEqual:
		return GreaterThan
	case LessThan:
		return GreaterOrEqual
	case GreaterOrEqual:
		return LessThan
	default:
		return c
	}
}

// Phrase renders the comparator as English for explanations
func (c Comparison) Phrase() string {
	switch c {
	case GreaterThan:
		return "more than"
	case LessThan:
		return "less than"
	case GreaterOrEqual:
		return "at least"
	case LessOrEqual:
		return "at most"
	default:
		return "exactly"
	}
}

// Operator is how multiple conditions of one factor combine
type Operator string

const (
	OperatorNone Operator = "NONE"
	OperatorAnd  Operator = "AND"
	OperatorOr   Operator = "OR"
	OperatorBut  Operator = "BUT"
	OperatorIf   Operator = "IF"
)

// EntityType is which kind of entity a factor is primarily about
type EntityType string

const (
	EntityPlayer  EntityType = "player"
	EntityTeam    EntityType = "team"
	EntityUnknown EntityType = "unknown"
)

// Factor type labels produced by classification
const (
	FactorPlayerScoring     = "player_scoring"
	FactorPlayerStatistics  = "player_statistics"
	FactorPlayerAchievement = "player_achievement"
	FactorPlayerPerformance = "player_performance"
	FactorTeamResult        = "team_result"
	FactorTeamMargin        = "team_margin"
	FactorGameTotal         = "game_total"
	FactorGameEvent         = "game_event"
	FactorTeamPerformance   = "team_performance"
	FactorGameOutcome       = "game_outcome"
	FactorGeneral           = "general"
)

// UnknownCondition is the canonical text of a condition that matched nothing
const UnknownCondition = "unknown"

// FactorCondition is one atomic stat/comparator/value predicate.
// Conditions are owned by their ParsedFactor and are not shared.
type FactorCondition struct {
	Text           string
	Type           ConditionType
	Value          float64
	ComparisonType Comparison
	TimeFrame      string // empty when no time frame applies
	TimePosition   string // empty when no position applies
	IsNegated      bool   // comparator has already been inverted
	Confidence     float64
}

// NewCondition returns a condition with the documented defaults
func NewCondition() FactorCondition {
	return FactorCondition{
		Text:           UnknownCondition,
		Type:           ConditionUnknown,
		ComparisonType: Equal,
	}
}

// ParsedFactor is the structured result of parsing one factor sentence.
// Empty entity strings mean "unresolved".
type ParsedFactor struct {
	RawText           string
	Player            string
	Team              string
	Opponent          string
	League            string
	EntityType        EntityType
	Conditions        []FactorCondition
	ConditionOperator Operator
	IsNegated         bool
	FactorType        string
	Confidence        float64
	ParsingTime       time.Time
}

// NewParsedFactor returns an empty factor for raw at parse start
func NewParsedFactor(raw string) *ParsedFactor {
	return &ParsedFactor{
		RawText:           raw,
		EntityType:        EntityUnknown,
		Conditions:        []FactorCondition{},
		ConditionOperator: OperatorNone,
		FactorType:        FactorGeneral,
	}
}

// NewMinimal returns the fallback factor used when parsing cannot proceed
func NewMinimal(raw string) *ParsedFactor {
	pf := NewParsedFactor(raw)
	pf.Confidence = 0.5
	pf.ParsingTime = time.Now().UTC()
	return pf
}

// Clone returns a deep copy so callers can never alias cached conditions
func (pf *ParsedFactor) Clone() *ParsedFactor {
	if pf == nil {
		return nil
	}
	out := *pf
	out.Conditions = make([]FactorCondition, len(pf.Conditions))
	copy(out.Conditions, pf.Conditions)
	return &out
}

// PrimaryEntity returns the resolved name of the entity the factor is about
func (pf *ParsedFactor) PrimaryEntity() string {
	switch pf.EntityType {
	case EntityPlayer:
		return pf.Player
	case EntityTeam:
		return pf.Team
	default:
		return ""
	}
}

// SharesContext reports whether two factors resolved the same player, team or league
func (pf *ParsedFactor) SharesContext(other *ParsedFactor) bool {
	if pf == nil || other == nil {
		return false
	}
	return (pf.Player != "" && pf.Player == other.Player) ||
		(pf.Team != "" && pf.Team == other.Team) ||
		(pf.League != "" && pf.League == other.League)
}
