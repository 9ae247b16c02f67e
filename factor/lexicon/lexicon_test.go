package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qfactor/factor/types"
)

func TestComparatorRegexpPrefersLongestPhrase(t *testing.T) {
	tests := []struct {
		text   string
		phrase string
		want   types.Comparison
	}{
		{"scores no more than 20 points", "no more than", types.LessOrEqual},
		{"scores more than 20 points", "more than", types.GreaterThan},
		{"at least 8 rebounds", "at least", types.GreaterOrEqual},
		{"fewer than 3 turnovers", "fewer than", types.LessThan},
		{"exactly 2 goals", "exactly", types.Equal},
		{"Scores OVER 30", "OVER", types.GreaterThan},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			match := ComparatorRegexp().FindString(tt.text)
			require.Equal(t, tt.phrase, match)
			cmp, ok := LookupComparator(match)
			require.True(t, ok)
			assert.Equal(t, tt.want, cmp)
		})
	}
}

func TestFindNegation(t *testing.T) {
	tests := []struct {
		text string
		term string
		ok   bool
	}{
		{"LeBron doesn't score 30", "doesn't", true},
		{"Chiefs never lose at home", "never", true},
		{"he fails to reach 100 yards", "fails to", true},
		{"Mahomes knows the playbook", "", false},
		{"nothing happens", "nothing", true},
		{"Chiefs win", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			term, _, _, ok := FindNegation(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Contains(t, []string{tt.term, "n't"}, term)
			}
		})
	}
}

func TestFindNegationReturnsEarliestTerm(t *testing.T) {
	term, start, end, ok := FindNegation("never fails")
	require.True(t, ok)
	assert.Equal(t, "never", term)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)
}

func TestScopeModifiers(t *testing.T) {
	assert.True(t, HasScopeModifier("doesn't win but still covers"))
	assert.True(t, HasScopeModifier("in spite of the injury"))
	assert.False(t, HasScopeModifier("doesn't win"))
}

func TestOperatorFor(t *testing.T) {
	op, ok := OperatorFor("As Well As")
	require.True(t, ok)
	assert.Equal(t, types.OperatorAnd, op)

	op, ok = OperatorFor("however")
	require.True(t, ok)
	assert.Equal(t, types.OperatorBut, op)

	_, ok = OperatorFor("because")
	assert.False(t, ok)
}

func TestMatchFramesAndPositions(t *testing.T) {
	frames := MatchFrames("in the 4th quarter of the game")
	keys := map[string]bool{}
	for _, m := range frames {
		keys[m.Key] = true
	}
	assert.True(t, keys["quarter"])
	assert.True(t, keys["game"])
	assert.Less(t, FramePriority("quarter"), FramePriority("game"))

	positions := MatchPositions("in the 4th quarter")
	require.NotEmpty(t, positions)
	assert.Equal(t, "fourth", positions[0].Key)

	assert.Empty(t, MatchPositions("in the finals"), "final does not match inside finals")
}

func TestTimeUnit(t *testing.T) {
	unit, ok := TimeUnit("Games,")
	require.True(t, ok)
	assert.Equal(t, "game", unit)

	_, ok = TimeUnit("points")
	assert.False(t, ok)
}

func TestAliasRegexpAllowsArticleGap(t *testing.T) {
	re := AliasRegexp("beat by")
	assert.True(t, re.MatchString("Chiefs beat the        by 10"))
	assert.True(t, re.MatchString("beat   by"))
	assert.False(t, re.MatchString("beat the Bills by"), "only one article may sit in the gap")
	assert.False(t, re.MatchString("beaten by"))

	cover := AliasRegexp("cover the spread")
	assert.True(t, cover.MatchString("they cover the spread"))

	single := AliasRegexp("points")
	assert.False(t, single.MatchString("pointsy"))
}
