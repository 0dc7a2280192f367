package domain

import "errors"

// Error kinds. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")
)

// kindError is a sentinel with its own message that also matches its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NewKindError returns a sentinel error reported as msg and matched by errors.Is
// against both itself and kind.
func NewKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Claim errors
var (
	ErrClaimNotFound          = NewKindError(ErrNotFound, "claim not found")
	ErrInvalidStage           = NewKindError(ErrValidation, "invalid stage")
	ErrInvalidClaimStatus     = NewKindError(ErrValidation, "invalid claim status")
	ErrInvalidStageTransition = NewKindError(ErrConflict, "invalid stage transition")
	ErrConfirmationRequired   = NewKindError(ErrValidation, "confirmation required")
	ErrStageChanged           = NewKindError(ErrConflict, "claim stage was changed by another request")
	ErrRequiredField          = NewKindError(ErrValidation, "required field missing")
	ErrInvalidDate            = NewKindError(ErrValidation, "invalid date")
	ErrInvalidAmount          = NewKindError(ErrValidation, "invalid amount")
	ErrInvalidSide            = NewKindError(ErrValidation, "invalid side")
)

// User errors
var (
	ErrUserNotFound      = NewKindError(ErrNotFound, "user not found")
	ErrUserAlreadyExists = NewKindError(ErrConflict, "user already exists")
	ErrInvalidRole       = NewKindError(ErrValidation, "invalid role")
)

// Import errors
var (
	ErrNoRows        = NewKindError(ErrValidation, "No valid data found in CSV")
	ErrNoValidClaims = NewKindError(ErrValidation, "No valid claims found. Please check CSV format.")
	ErrInvalidCSV    = NewKindError(ErrValidation, "Invalid CSV file")
)
