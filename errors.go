package loadsync

import "errors"

var (
	ErrNilSubscriber  = errors.New("loadsync: nil subscriber")
	ErrEmptyEvent     = errors.New("loadsync: empty event name")
	ErrInvalidPattern = errors.New("loadsync: invalid source pattern")
)
