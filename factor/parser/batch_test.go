package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qfactor/factor/types"
)

func TestParseMulti(t *testing.T) {
	p := newPatternParser(t)
	texts := []string{
		"LeBron James scores more than 25 points",
		"LeBron gets 10 rebounds",
		"Chiefs win",
	}

	batch := p.ParseMulti(texts)
	require.Len(t, batch, len(texts))
	for i, pf := range batch {
		assert.Equal(t, texts[i], pf.RawText, "input order")
	}

	// Cached singles are unboosted
	first, second, third := p.Parse(texts[0]), p.Parse(texts[1]), p.Parse(texts[2])
	assert.InDelta(t, first.Confidence+sharedContextBoost, batch[0].Confidence, 1e-9)
	assert.InDelta(t, second.Confidence+sharedContextBoost, batch[1].Confidence, 1e-9)
	assert.InDelta(t, third.Confidence, batch[2].Confidence, 1e-9)
}

func TestParseMultiEmpty(t *testing.T) {
	p := newPatternParser(t)
	assert.Empty(t, p.ParseMulti(nil))
}

func TestParseMultiConcurrent(t *testing.T) {
	p := newPatternParser(t)
	texts := make([]string, 64)
	for i := range texts {
		texts[i] = fmt.Sprintf("Curry makes %d threes", i%7)
	}
	batch := p.ParseMulti(texts)
	for i, pf := range batch {
		require.NotNil(t, pf)
		assert.Equal(t, texts[i], pf.RawText)
		assert.LessOrEqual(t, pf.Confidence, MaxConfidence)
	}
}

func TestBoostSharedContext(t *testing.T) {
	mk := func(player, team, league string, c float64) *types.ParsedFactor {
		pf := types.NewParsedFactor("")
		pf.Player, pf.Team, pf.League, pf.Confidence = player, team, league, c
		return pf
	}
	factors := []*types.ParsedFactor{
		mk("LeBron James", "", "NBA", 0.5),
		mk("", "Los Angeles Lakers", "NBA", 0.94),
		mk("", "Liverpool", "Premier League", 0.6),
		mk("", "", "", 0.4),
	}
	changed := BoostSharedContext(factors)
	assert.Equal(t, 2, changed)
	assert.InDelta(t, 0.52, factors[0].Confidence, 1e-9)
	assert.Equal(t, MaxConfidence, factors[1].Confidence)
	assert.InDelta(t, 0.6, factors[2].Confidence, 1e-9)
	assert.InDelta(t, 0.4, factors[3].Confidence, 1e-9)
}
