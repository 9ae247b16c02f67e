package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teranos/qfactor/factor/types"
)

// Explain renders pf as one or two English sentences for humans
func Explain(pf *types.ParsedFactor) string {
	if pf == nil {
		return ""
	}
	var b strings.Builder

	b.WriteString(subject(pf))
	if pf.Opponent != "" {
		fmt.Fprintf(&b, " against %s", pf.Opponent)
	}
	if pf.League != "" {
		fmt.Fprintf(&b, " (%s)", pf.League)
	}

	if len(pf.Conditions) == 0 {
		b.WriteString(": no conditions recognized.")
	} else {
		parts := make([]string, len(pf.Conditions))
		for i, c := range pf.Conditions {
			parts[i] = describeCondition(c)
		}
		fmt.Fprintf(&b, ": %s.", strings.Join(parts, joiner(pf.ConditionOperator)))
	}

	fmt.Fprintf(&b, " Type %s, confidence %d%%.", pf.FactorType, int(math.Round(pf.Confidence*100)))
	return b.String()
}

func subject(pf *types.ParsedFactor) string {
	switch {
	case pf.PrimaryEntity() != "":
		return pf.PrimaryEntity()
	case pf.Player != "":
		return pf.Player
	case pf.Team != "":
		return pf.Team
	case pf.League != "":
		return "A game"
	}
	return "Unknown entity"
}

func describeCondition(c types.FactorCondition) string {
	text := c.Text
	if text == types.UnknownCondition {
		text = "an unrecognized condition"
	}

	var s string
	if c.Value > 0 || c.ComparisonType != types.Equal {
		s = fmt.Sprintf("%s %s %s", c.ComparisonType.Phrase(), strconv.FormatFloat(c.Value, 'f', -1, 64), text)
	} else {
		s = text
	}

	switch {
	case c.TimePosition != "" && c.TimeFrame != "":
		s += fmt.Sprintf(" in the %s %s", c.TimePosition, c.TimeFrame)
	case c.TimeFrame != "":
		s += fmt.Sprintf(" in the %s", c.TimeFrame)
	}
	if c.IsNegated {
		s += " (negated)"
	}
	return s
}

func joiner(op types.Operator) string {
	switch op {
	case types.OperatorAnd:
		return " and "
	case types.OperatorOr:
		return " or "
	case types.OperatorBut:
		return " but "
	case types.OperatorIf:
		return " if "
	}
	return "; "
}
