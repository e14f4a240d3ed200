package apperr

import "errors"

// Error is a client-facing error with a stable numeric code.
// The message is deliberately generic for internal failures.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

var (
	// Unauthorized is returned when an operation required an authenticated
	// identity and none was present or the token failed verification.
	Unauthorized = &Error{Code: 401, Message: "Authentication required."}
	// Internal covers any unexpected failure without leaking detail.
	Internal = &Error{Code: 500, Message: "Something went wrong. Please try again later."}
)

// FieldError attributes a validation failure to a named input field.
// Field errors are returned as data, never as transport-level failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// From maps any error to a client-facing Error. Known errors pass through;
// everything else is rendered as Internal (detail belongs in the server log).
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal
}
