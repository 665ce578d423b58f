package runtime

import "fmt"

// Error is the runtime error kind: type mismatches, unknown names, missing
// methods, division by zero. It is never caught inside the evaluator;
// it propagates to the embedder.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewError(format string, a ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}
