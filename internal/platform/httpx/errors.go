package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors shared by the domain packages.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps err onto an envelope. Sentinels pick their own status;
// anything else is reported with fallback (400 on writes, 500 on reads).
func RespondError(w http.ResponseWriter, fallback int, err error) {
	status := fallback
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	Fail(w, status, Message(err))
}

// Message extracts the client-facing text for err. Postgres errors surface
// their server message unchanged.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, describeField(fe))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "datetime":
		return field + " must be a date in " + fe.Param() + " format"
	case "gt", "gte", "lt", "lte", "min", "max":
		return field + " must satisfy " + fe.Tag() + "=" + fe.Param()
	default:
		return field + " is invalid"
	}
}

// Invalid wraps a validator error so RespondError reports it as 400.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &validationError{err: err}
}

type validationError struct {
	err error
}

func (e *validationError) Error() string { return Message(e.err) }

func (e *validationError) Unwrap() []error { return []error{ErrValidation, e.err} }
