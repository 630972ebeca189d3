package acceptance

import "errors"

var (
	ErrInvalidScenario  = errors.New("acceptance: invalid scenario")
	ErrInvalidPredicate = errors.New("acceptance: invalid predicate")
)
