package domain

// Result is the flattened outcome shape used by the admin flows: failures are
// reported as a value, not an error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK builds a successful Result.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds a failed Result.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// FailErr builds a failed Result from an error, falling back to a default
// message when the error carries none.
func FailErr(err error, fallback string) Result {
	return Result{Success: false, Message: ErrMessage(err, fallback)}
}
