package parser

import (
	"fmt"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/types"
)

// Validate reports whether pf carries enough structure to be priced: a
// known entity type, that entity resolved, and at least one condition.
func Validate(pf *types.ParsedFactor) (bool, string) {
	switch {
	case pf == nil:
		return false, "factor is empty"
	case pf.EntityType == types.EntityUnknown || pf.EntityType == "":
		return false, "could not identify a player or team"
	case pf.PrimaryEntity() == "":
		return false, fmt.Sprintf("%s entity is not resolved", pf.EntityType)
	case len(pf.Conditions) == 0:
		return false, "no conditions extracted"
	}
	return true, "valid"
}

// ValidateError is Validate as an error wrapping errors.ErrInvalidFactor
func ValidateError(pf *types.ParsedFactor) error {
	ok, reason := Validate(pf)
	if ok {
		return nil
	}
	return errors.WithHint(
		errors.Wrap(errors.ErrInvalidFactor, reason),
		"name a player or team and what they should do, e.g. \"LeBron James scores over 25 points\"")
}
