package parser

import (
	"strings"

	"github.com/teranos/qfactor/factor/lexicon"
	"github.com/teranos/qfactor/internal/util"
)

const (
	patternTimeBase = 0.4
	syntaxTimeBase  = 0.5
	patternTimeCap  = 0.85
	syntaxTimeCap   = 0.95

	// unitWindow is how many tokens after a number a time unit may appear
	unitWindow = 2
)

// detectTime finds the primary frame, position, quantifier and explicit
// numeric span of a clause. advanced drops single-word frame aliases that
// the tagger marked as something other than a noun ("run for 100 yards").
func detectTime(clause string, tokens []Token, advanced bool) TimeFrameResult {
	res := TimeFrameResult{Method: MethodPattern, Confidence: patternTimeBase}
	if advanced {
		res.Method = MethodSyntax
		res.Confidence = syntaxTimeBase
	}
	if strings.TrimSpace(clause) == "" {
		res.Method = MethodNone
		return res
	}

	for _, m := range lexicon.MatchFrames(clause) {
		if advanced && !strings.Contains(m.Alias, " ") {
			if i := tokenIndexAt(tokens, m.Start); i >= 0 && tokens[i].Tagged() && !tokens[i].IsNoun() {
				continue
			}
		}
		if res.PrimaryFrame == "" {
			res.PrimaryFrame = m.Key
		}
		res.Spans = append(res.Spans, Span{m.Start, m.End})
	}

	var valueSpan *Span
	for i, t := range tokens {
		n, plus, ok := numberAt(clause, t)
		if !ok || plus {
			continue
		}
		for j := i + 1; j < len(tokens) && j <= i+unitWindow; j++ {
			if unit, isUnit := lexicon.TimeUnit(tokens[j].Text); isUnit {
				res.SpecificValue = &TimeValue{Number: n, Unit: unit}
				valueSpan = &Span{t.Start, tokens[j].End}
				res.Spans = append(res.Spans, *valueSpan)
				break
			}
		}
		if res.SpecificValue != nil {
			break
		}
	}

	if res.PrimaryFrame == "" && res.SpecificValue != nil && lexicon.FramePriority(res.SpecificValue.Unit) >= 0 {
		res.PrimaryFrame = res.SpecificValue.Unit
	}

	if res.PrimaryFrame != "" {
		if positions := lexicon.MatchPositions(clause); len(positions) > 0 {
			res.Position = positions[0].Key
			for _, p := range positions {
				res.Spans = append(res.Spans, Span{p.Start, p.End})
			}
		}
		for _, q := range lexicon.MatchQuantifiers(clause) {
			// A bare numeral only quantifies when it is the time value itself
			if q.Key == "exact" && (valueSpan == nil || !overlaps([]Span{*valueSpan}, q.Start, q.End)) {
				continue
			}
			if res.Quantifier == "" {
				res.Quantifier = q.Key
			}
			res.Spans = append(res.Spans, Span{q.Start, q.End})
		}
	}

	res.ValueSpan = valueSpan
	if res.PrimaryFrame != "" {
		res.Confidence += 0.2
	}
	if res.Position != "" {
		res.Confidence += 0.1
	}
	if res.SpecificValue != nil {
		res.Confidence += 0.2
	}
	if advanced {
		res.Confidence = util.Clamp(res.Confidence+0.1, 0, syntaxTimeCap)
	} else {
		res.Confidence = util.Clamp(res.Confidence, 0, patternTimeCap)
	}
	return res
}
