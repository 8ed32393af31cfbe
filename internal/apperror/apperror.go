// Package apperror defines the error taxonomy shared across the wallet
// service. It is a sum type expressed as a struct, not an error hierarchy:
// every boundary that needs to branch on failure kind does so through the
// Kind field via errors.As, the same way internal/store's repositories
// expose sentinel errors for callers to match with errors.Is.
package apperror

import "fmt"

// Kind classifies an AppError for the purposes of HTTP status mapping and
// caller-facing messaging.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindLimit         Kind = "LIMIT"
	KindUnauthorized  Kind = "UNAUTHORIZED"
	KindNotFound      Kind = "NOTFOUND"
	KindAlreadyExists Kind = "ALREADY_EXISTS"
	KindTimeout       Kind = "TIMEOUT"
	KindConnection    Kind = "CONNECTION"
	KindDatabase      Kind = "DATABASE"
	KindServer        Kind = "SERVER"
	KindUnknown       Kind = "UNKNOWN"
)

// AppError is the error type returned from every ProofEngine operation that
// can fail in a way the caller needs to distinguish.
type AppError struct {
	StatusCode int
	Kind       Kind
	Message    string
	Params     map[string]any
	cause      error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// New constructs an AppError of the given kind, status code, and message.
func New(kind Kind, statusCode int, message string) *AppError {
	return &AppError{Kind: kind, StatusCode: statusCode, Message: message}
}

// WithParams attaches structured context (field name, limit value, etc.)
// to an AppError for caller-facing responses. Returns a copy.
func (e *AppError) WithParams(params map[string]any) *AppError {
	cp := *e
	cp.Params = params
	return &cp
}

// Wrap attaches an underlying cause without changing kind or status.
// Returns a copy.
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.cause = err
	return &cp
}

func Validation(message string) *AppError {
	return New(KindValidation, 400, message)
}

func Limit(message string) *AppError {
	return New(KindLimit, 400, message)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, 401, message)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, 404, message)
}

// AlreadyExists is used for a unique-constraint violation the caller can
// act on directly, e.g. a duplicate access_key.
func AlreadyExists(message string) *AppError {
	return New(KindAlreadyExists, 409, message)
}

// Timeout is used for a melt that has not resolved before the caller's
// deadline — the quote remains pending on the mint side and is still
// checkable, so the HTTP layer maps this to 202 rather than an error status.
func Timeout(message string) *AppError {
	return New(KindTimeout, 202, message)
}

// Connection is used when a melt recheck against the mint itself fails
// after an ambiguous payment outcome — nothing useful can be told to the
// caller beyond "try checking again later".
func Connection(message string) *AppError {
	return New(KindConnection, 500, message)
}

// Database is used for a store failure the caller cannot act on beyond
// retrying — a query or transaction failed for reasons unrelated to the
// caller's input.
func Database(message string) *AppError {
	return New(KindDatabase, 500, message)
}

// Server is used for an unexpected failure inside this service's own
// logic, as distinct from Database (store) or Connection (mint) failures.
func Server(message string) *AppError {
	return New(KindServer, 500, message)
}

func Unknown(message string) *AppError {
	return New(KindUnknown, 500, message)
}
