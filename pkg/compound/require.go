package compound

import "errors"

const (
	// FlagNoisy failures worth an info log line
	FlagNoisy = 1 << iota
	// FlagRetry failures that may succeed on the next tick
	FlagRetry
)

// RequireError failed precondition
type RequireError struct {
	Msg   string
	Flags int
}

func (e *RequireError) Error() string {
	return e.Msg
}

// Noisy should be logged
func (e *RequireError) Noisy() bool {
	return e.Flags&FlagNoisy != 0
}

// Retryable may succeed later
func (e *RequireError) Retryable() bool {
	return e.Flags&FlagRetry != 0
}

// Require nil if condition holds, a RequireError carrying msg otherwise
func Require(condition bool, msg string, flags ...int) error {
	if condition {
		return nil
	}

	var f int
	for _, flag := range flags {
		f |= flag
	}

	return &RequireError{Msg: msg, Flags: f}
}

// IsRetryable err is a RequireError flagged FlagRetry
func IsRetryable(err error) bool {
	var e *RequireError
	return errors.As(err, &e) && e.Retryable()
}
