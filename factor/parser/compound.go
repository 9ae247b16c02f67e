package parser

import (
	"sort"
	"strings"

	"github.com/teranos/qfactor/factor/lexicon"
	"github.com/teranos/qfactor/factor/types"
)

// boundary is one conjunction occurrence that separates clauses
type boundary struct {
	Span
	op types.Operator
}

// splitPattern tries each operator in priority order (AND, OR, BUT, IF) and
// splits on every occurrence of the first phrase found. Phrases inside
// comparators ("25 or more") do not count.
func splitPattern(text string) CompoundResult {
	protected := comparatorSpans(text)
	for _, op := range lexicon.CompoundOperators {
		for _, phrase := range op.Phrases {
			var cuts []boundary
			for _, loc := range lexicon.Regexp(phrase).FindAllStringIndex(text, -1) {
				if overlaps(protected, loc[0], loc[1]) {
					continue
				}
				cuts = append(cuts, boundary{Span{loc[0], loc[1]}, op.Operator})
			}
			if len(cuts) == 0 {
				continue
			}
			return assemble(text, cuts, MethodPattern)
		}
	}
	return single(text, MethodPattern)
}

// splitAtBoundaries cuts text at every boundary; the dominant operator is
// the first boundary by position.
func splitAtBoundaries(text string, cuts []boundary, method Method) CompoundResult {
	if len(cuts) == 0 {
		return single(text, method)
	}
	sort.SliceStable(cuts, func(i, j int) bool { return cuts[i].Start < cuts[j].Start })
	return assemble(text, cuts, method)
}

func assemble(text string, cuts []boundary, method Method) CompoundResult {
	var clauses []string
	prev := 0
	for _, c := range cuts {
		if c.Start < prev {
			continue
		}
		clauses = appendClause(clauses, text[prev:c.Start])
		prev = c.End
	}
	clauses = appendClause(clauses, text[prev:])

	if len(clauses) <= 1 {
		return single(text, method)
	}
	return CompoundResult{Operator: cuts[0].op, Clauses: clauses, Method: method}
}

func appendClause(clauses []string, s string) []string {
	s = strings.Trim(strings.TrimSpace(s), ",;")
	if s = strings.TrimSpace(s); s != "" {
		clauses = append(clauses, s)
	}
	return clauses
}

func single(text string, method Method) CompoundResult {
	return CompoundResult{Operator: types.OperatorNone, Clauses: []string{text}, Method: method}
}
