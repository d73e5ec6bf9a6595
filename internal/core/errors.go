package core

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a required argument is missing or
// malformed. It is the only error kind produced by this package; every
// other operation is total over well-typed inputs.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArg(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, name)
}
