package eventstore

import "errors"

var (
	ErrNotFound    = errors.New("eventstore: not found")
	ErrCIDMismatch = errors.New("eventstore: cid mismatch")
	ErrImmutable   = errors.New("eventstore: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
