package types

import (
	"encoding/json"
	"time"
)

type conditionJSON struct {
	Text           string        `json:"text"`
	Type           ConditionType `json:"type"`
	Value          float64       `json:"value"`
	ComparisonType Comparison    `json:"comparison_type"`
	TimeFrame      *string       `json:"time_frame"`
	TimePosition   *string       `json:"time_position"`
	IsNegated      bool          `json:"is_negated"`
	Confidence     float64       `json:"confidence"`
}

type factorJSON struct {
	RawText           string            `json:"raw_text"`
	Player            *string           `json:"player"`
	Team              *string           `json:"team"`
	Opponent          *string           `json:"opponent"`
	League            *string           `json:"league"`
	EntityType        EntityType        `json:"entity_type"`
	Conditions        []FactorCondition `json:"conditions"`
	ConditionOperator Operator          `json:"condition_operator"`
	IsNegated         bool              `json:"is_negated"`
	FactorType        string            `json:"factor_type"`
	Confidence        float64           `json:"confidence"`
	ParsingTime       time.Time         `json:"parsing_time"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MarshalJSON emits the snake_case shape with null for unset time fields
func (c FactorCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{
		Text:           c.Text,
		Type:           c.Type,
		Value:          c.Value,
		ComparisonType: c.ComparisonType,
		TimeFrame:      nullable(c.TimeFrame),
		TimePosition:   nullable(c.TimePosition),
		IsNegated:      c.IsNegated,
		Confidence:     c.Confidence,
	})
}

// UnmarshalJSON reads the shape written by MarshalJSON
func (c *FactorCondition) UnmarshalJSON(data []byte) error {
	var w conditionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = FactorCondition{
		Text:           w.Text,
		Type:           w.Type,
		Value:          w.Value,
		ComparisonType: w.ComparisonType,
		TimeFrame:      deref(w.TimeFrame),
		TimePosition:   deref(w.TimePosition),
		IsNegated:      w.IsNegated,
		Confidence:     w.Confidence,
	}
	return nil
}

// MarshalJSON emits the snake_case shape with null for unresolved entities
func (pf ParsedFactor) MarshalJSON() ([]byte, error) {
	conds := pf.Conditions
	if conds == nil {
		conds = []FactorCondition{}
	}
	return json.Marshal(factorJSON{
		RawText:           pf.RawText,
		Player:            nullable(pf.Player),
		Team:              nullable(pf.Team),
		Opponent:          nullable(pf.Opponent),
		League:            nullable(pf.League),
		EntityType:        pf.EntityType,
		Conditions:        conds,
		ConditionOperator: pf.ConditionOperator,
		IsNegated:         pf.IsNegated,
		FactorType:        pf.FactorType,
		Confidence:        pf.Confidence,
		ParsingTime:       pf.ParsingTime,
	})
}

// UnmarshalJSON reads the shape written by MarshalJSON
func (pf *ParsedFactor) UnmarshalJSON(data []byte) error {
	var w factorJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Conditions == nil {
		w.Conditions = []FactorCondition{}
	}
	*pf = ParsedFactor{
		RawText:           w.RawText,
		Player:            deref(w.Player),
		Team:              deref(w.Team),
		Opponent:          deref(w.Opponent),
		League:            deref(w.League),
		EntityType:        w.EntityType,
		Conditions:        w.Conditions,
		ConditionOperator: w.ConditionOperator,
		IsNegated:         w.IsNegated,
		FactorType:        w.FactorType,
		Confidence:        w.Confidence,
		ParsingTime:       w.ParsingTime,
	}
	return nil
}

// ToDict returns the JSON shape as a generic map, for callers that post-process
// parse results without depending on this package's structs.
func (pf *ParsedFactor) ToDict() (map[string]interface{}, error) {
	data, err := json.Marshal(pf)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
