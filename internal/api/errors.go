package api

import "fmt"

// Failure classes. Network and HTTP-level failures are presented to the
// user identically; the split is kept so tests and pollers can tell them
// apart.
type Kind int

const (
	KindNetwork Kind = iota // transport failed before a response arrived
	KindHTTP                // non-2xx status or a non-JSON body where JSON was required
	KindApplication         // server answered success:false
	KindValidation          // rejected client-side, never sent
)

// Error carries the failure class alongside the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func netErr(msg string, err error) *Error {
	return &Error{Kind: KindNetwork, Msg: msg, Err: err}
}

func httpErr(msg string) *Error {
	return &Error{Kind: KindHTTP, Msg: msg}
}

// UserMessage flattens an error into the string shown to the user.
// Transport and HTTP failures collapse into one generic message; there is
// no automatic retry anywhere, so the text asks the user to try again.
func UserMessage(err error) string {
	if e, ok := err.(*Error); ok {
		switch e.Kind {
		case KindApplication, KindValidation:
			if e.Msg != "" {
				return e.Msg
			}
		}
	}
	return "An error occurred. Please check your connection and try again."
}

// IsNetworkOrHTTP reports whether the failure happened at or below the
// HTTP layer, which the UI labels "Network Error" regardless of cause.
func IsNetworkOrHTTP(err error) bool {
	e, ok := err.(*Error)
	return ok && (e.Kind == KindNetwork || e.Kind == KindHTTP)
}
