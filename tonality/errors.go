package tonality

import (
	"fmt"

	"github.com/jsphweid/kernprep/model"
	"github.com/pkg/errors"
)

var (
	ErrKeyUnresolvable  = errors.New("key unresolvable")
	ErrUnrecognizedMode = errors.New("unrecognized mode")
)

type UnrecognizedModeError struct {
	Key model.Key
}

func (e *UnrecognizedModeError) Error() string {
	return fmt.Sprintf("unrecognized mode %q for key on %s", string(e.Key.Mode), e.Key.Tonic)
}

func (e *UnrecognizedModeError) Is(target error) bool {
	return target == ErrUnrecognizedMode
}
