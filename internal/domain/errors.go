package domain

import "errors"

// Kind classifies an error for callers that branch on outcome rather than
// message text.
type Kind string

const (
	KindValidation Kind = "validation"
	KindFetch      Kind = "fetch"
	KindNotFound   Kind = "not_found"
	KindStock      Kind = "stock"
	KindCoupon     Kind = "coupon"
	KindPayment    Kind = "payment"
	KindAuth       Kind = "auth"
	KindOrder      Kind = "order"
)

// Error is a tagged business outcome. Expected failures (invalid coupon,
// stock conflict, upstream rejection) are returned as values of this type,
// never panicked.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// E builds a tagged error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ErrKind reports the Kind of err, or "" when err is not a tagged error.
func ErrKind(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a tagged error of the given kind.
func IsKind(err error, kind Kind) bool {
	return ErrKind(err) == kind
}

// ErrMessage returns the message carried by err, or fallback when err is nil
// or carries an empty message.
func ErrMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
