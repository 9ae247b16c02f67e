package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qfactor/factor/types"
)

func extractPattern(t *testing.T, clause string) types.FactorCondition {
	t.Helper()
	cat := testCatalog(t)
	b := NewPatternBackend(cat, 0)
	x := conditionExtractor{cat: cat, minScore: defaultConditionMinScore, fuzzyThreshold: defaultFuzzyThreshold}
	cond, ok := x.extract(clause, b.Tokens(clause), b.ResolveEntities(clause), b.DetectTimeFrame(clause))
	require.True(t, ok)
	return cond
}

func TestExtractCondition(t *testing.T) {
	tests := []struct {
		name   string
		clause string
		text   string
		ctype  types.ConditionType
		value  float64
		cmp    types.Comparison
	}{
		{"alias with comparator", "Giannis grabs at least 12 boards", "rebounds", types.ConditionStat, 12, types.GreaterOrEqual},
		{"comparator after number", "Haaland nets 2 goals or more", "goals", types.ConditionScoring, 2, types.GreaterOrEqual},
		{"number word", "Kelce catches five touchdowns", "touchdowns", types.ConditionScoring, 5, types.Equal},
		{"under", "Brunson commits under 3 turnovers", "turnovers", types.ConditionStat, 3, types.LessThan},
		{"ordinal is not a threshold", "Tatum scores 30 points in the 4th quarter", "points", types.ConditionScoring, 30, types.Equal},
		{"time value is not a threshold", "Curry makes 5 threes in his last 3 games", "three pointers", types.ConditionStat, 5, types.Equal},
		{"longer phrase wins ties", "Chiefs win by 7 or more points", "margin", types.ConditionMargin, 7, types.GreaterOrEqual},
		{"multi-word alias", "Mahomes throws for 300+ yards", "passing yards", types.ConditionStat, 300, types.GreaterOrEqual},
		{"achievement", "Jokic records a triple double", "triple double", types.ConditionAchievement, 0, types.Equal},
		{"event", "Palmer gets a red card", "red card", types.ConditionEvent, 0, types.Equal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := extractPattern(t, tt.clause)
			assert.Equal(t, tt.text, c.Text)
			assert.Equal(t, tt.ctype, c.Type)
			assert.Equal(t, tt.value, c.Value)
			assert.Equal(t, tt.cmp, c.ComparisonType)
			assert.GreaterOrEqual(t, c.Confidence, keywordConfidenceBase)
			assert.LessOrEqual(t, c.Confidence, keywordConfidenceBase+keywordConfidenceWeight)
		})
	}
}

func TestExtractConditionFuzzy(t *testing.T) {
	c := extractPattern(t, "Jokic gets 12 rebouns")
	assert.Equal(t, "rebounds", c.Text)
	assert.Equal(t, 12.0, c.Value)
	assert.Equal(t, types.Equal, c.ComparisonType)
	// 1 - 1/8 similarity against "rebounds"
	assert.InDelta(t, 0.2+0.5*0.875, c.Confidence, 1e-9)
}

func TestExtractConditionPlaceholder(t *testing.T) {
	c := extractPattern(t, "Embiid xyzzy 40")
	assert.Equal(t, types.UnknownCondition, c.Text)
	assert.Equal(t, types.ConditionUnknown, c.Type)
	assert.Equal(t, 40.0, c.Value)
	assert.Equal(t, types.Equal, c.ComparisonType)
	assert.Equal(t, placeholderConfidence, c.Confidence)
}

func TestExtractConditionNoTokens(t *testing.T) {
	cat := testCatalog(t)
	x := conditionExtractor{cat: cat, minScore: defaultConditionMinScore, fuzzyThreshold: defaultFuzzyThreshold}
	_, ok := x.extract("", nil, nil, TimeFrameResult{})
	assert.False(t, ok)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in    string
		value float64
		plus  bool
		ok    bool
	}{
		{"25", 25, false, true},
		{"300+", 300, true, true},
		{"1,000", 1000, false, true},
		{"25.5", 25.5, false, true},
		{"Seven", 7, false, true},
		{"4th", 0, false, false},
		{"points", 0, false, false},
		{"+", 0, false, false},
	}
	for _, tt := range tests {
		v, plus, ok := parseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.value, v, tt.in)
		assert.Equal(t, tt.plus, plus, tt.in)
	}
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Gilgeous-Alexander doesn't drop 1,000 or 300+!")
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.Text
	}
	assert.Equal(t, []string{"Gilgeous-Alexander", "doesn't", "drop", "1,000", "or", "300+"}, texts)
	assert.Equal(t, 0, tokens[0].Start)
	assert.Equal(t, len("Gilgeous-Alexander"), tokens[0].End)
	assert.Equal(t, "lebron", Token{Text: "LeBron's"}.Lower())
}
