package apierr

import "fmt"

// Error pairs an HTTP status and a stable machine-readable code with the
// underlying cause. Services return it; handlers unwrap it with errors.As.
type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Status != 0:
		return fmt.Sprintf("api error (%d)", e.Status)
	default:
		return "api error"
	}
}

func (e *Error) Unwrap() error { return e.Err }
