package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparisonInvert(t *testing.T) {
	tests := []struct {
		in   Comparison
		want Comparison
	}{
		{GreaterThan, LessOrEqual},
		{LessOrEqual, GreaterThan},
		{LessThan, GreaterOrEqual},
		{GreaterOrEqual, LessThan},
		{Equal, Equal},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Invert())
			if tt.in != Equal {
				assert.Equal(t, tt.in, tt.in.Invert().Invert(), "inversion is an involution")
			}
		})
	}
}

func TestParsedFactorJSONShape(t *testing.T) {
	pf := NewParsedFactor("LeBron James scores more than 25 points")
	pf.Player = "LeBron James"
	pf.League = "NBA"
	pf.EntityType = EntityPlayer
	pf.FactorType = FactorPlayerScoring
	pf.Confidence = 0.81
	pf.ParsingTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pf.Conditions = append(pf.Conditions, FactorCondition{
		Text:           "points",
		Type:           ConditionScoring,
		Value:          25,
		ComparisonType: GreaterThan,
		TimeFrame:      "quarter",
		Confidence:     0.9,
	})

	data, err := json.Marshal(pf)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "LeBron James", raw["player"])
	assert.Nil(t, raw["team"], "unresolved entities are null")
	assert.Nil(t, raw["opponent"])
	assert.Equal(t, "NONE", raw["condition_operator"])
	assert.Equal(t, "2026-03-01T12:00:00Z", raw["parsing_time"])

	conds := raw["conditions"].([]interface{})
	require.Len(t, conds, 1)
	cond := conds[0].(map[string]interface{})
	assert.Equal(t, 25.0, cond["value"])
	assert.Equal(t, ">", cond["comparison_type"])
	assert.Equal(t, "quarter", cond["time_frame"])
	assert.Nil(t, cond["time_position"])

	var back ParsedFactor
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *pf, back)
}

func TestMinimalFactorHasEmptyConditions(t *testing.T) {
	pf := NewMinimal("")
	assert.Equal(t, EntityUnknown, pf.EntityType)
	assert.Empty(t, pf.Conditions)
	assert.Equal(t, 0.5, pf.Confidence)

	dict, err := pf.ToDict()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, dict["conditions"])
	assert.Equal(t, "general", dict["factor_type"])
}

func TestCloneIsDeep(t *testing.T) {
	pf := NewParsedFactor("x")
	pf.Conditions = append(pf.Conditions, NewCondition())

	clone := pf.Clone()
	clone.Conditions[0].ComparisonType = GreaterThan
	clone.Confidence = 0.9

	assert.Equal(t, Equal, pf.Conditions[0].ComparisonType)
	assert.Zero(t, pf.Confidence)
	assert.Nil(t, (*ParsedFactor)(nil).Clone())
}

func TestSharesContext(t *testing.T) {
	a := &ParsedFactor{Team: "Kansas City Chiefs"}
	b := &ParsedFactor{Team: "Kansas City Chiefs", Player: "Patrick Mahomes"}
	c := &ParsedFactor{League: "NBA"}

	assert.True(t, a.SharesContext(b))
	assert.False(t, a.SharesContext(c))
	assert.False(t, a.SharesContext(nil))
	assert.False(t, (&ParsedFactor{}).SharesContext(&ParsedFactor{}), "empty fields never match")
}
