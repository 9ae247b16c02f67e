package parser

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/logger"
)

// ParseMulti parses texts in parallel and returns factors in input order.
// Factors that share a player, team or league with another factor in the
// batch gain a small confidence boost.
func (p *Parser) ParseMulti(texts []string) []*types.ParsedFactor {
	return p.ParseMultiWithOptions(texts, ParseOptions{})
}

func (p *Parser) ParseMultiWithOptions(texts []string, opts ParseOptions) []*types.ParsedFactor {
	out := make([]*types.ParsedFactor, len(texts))
	if len(texts) == 0 {
		return out
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		g.Go(func() error {
			out[i] = p.ParseWithOptions(text, opts)
			return nil
		})
	}
	_ = g.Wait() // ParseWithOptions never fails

	boosted := BoostSharedContext(out)
	p.log.Debugw("batch parsed", logger.FieldBatchSize, len(texts), "boosted", boosted)
	return out
}

// BoostSharedContext adds a fixed boost to both factors of every pair that
// resolved the same player, team or league, capped at MaxConfidence. It
// returns how many factors changed.
func BoostSharedContext(factors []*types.ParsedFactor) int {
	boosts := make([]int, len(factors))
	for i := 0; i < len(factors); i++ {
		for j := i + 1; j < len(factors); j++ {
			if factors[i].SharesContext(factors[j]) {
				boosts[i]++
				boosts[j]++
			}
		}
	}
	changed := 0
	for i, n := range boosts {
		if n == 0 {
			continue
		}
		c := factors[i].Confidence + float64(n)*sharedContextBoost
		if c > MaxConfidence {
			c = MaxConfidence
		}
		factors[i].Confidence = c
		changed++
	}
	return changed
}
