// Package dberr turns driver errors into StoreError values that carry the
// Postgres-style message/details/hint triple shown to users.
package dberr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes the CRM distinguishes.
const (
	CodeUniqueViolation  = "23505"
	CodeNotNullViolation = "23502"
	CodeInvalidAuth      = "28000"
	CodeInvalidPassword  = "28P01"
	CodeJWTExpired       = "PGRST301"
)

// ErrAuthExpired matches any store error caused by an expired or invalid session.
var ErrAuthExpired = errors.New("session expired")

var columnPattern = regexp.MustCompile(`column "(\w+)"`)

// StoreError is a structured rejection from the remote store.
type StoreError struct {
	Code    string
	Message string
	Details string
	Hint    string
	Column  string
}

func (e *StoreError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (SQLSTATE %s)", e.Message, e.Code)
}

// Is lets errors.Is(err, ErrAuthExpired) see through auth rejections.
func (e *StoreError) Is(target error) bool {
	return target == ErrAuthExpired && e.authExpired()
}

func (e *StoreError) authExpired() bool {
	switch e.Code {
	case CodeInvalidAuth, CodeInvalidPassword, CodeJWTExpired:
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "jwt expired") ||
		strings.Contains(msg, "invalid jwt") ||
		strings.Contains(msg, "token is expired")
}

func (e *StoreError) UniqueViolation() bool {
	return e.Code == CodeUniqueViolation || strings.Contains(e.Message, "violates unique constraint")
}

func (e *StoreError) NotNullViolation() bool {
	return e.Code == CodeNotNullViolation || strings.Contains(e.Message, "violates not-null constraint")
}

// FromError maps pgx and sqlite failures to *StoreError. Anything it does not
// recognise is returned unchanged and treated as transient by callers.
func FromError(err error) error {
	if err == nil {
		return nil
	}

	var se *StoreError
	if errors.As(err, &se) {
		return se
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &StoreError{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
			Column:  pgErr.ColumnName,
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &StoreError{
			Code:    CodeUniqueViolation,
			Message: "duplicate key value violates unique constraint",
		}
	}

	// sqlite reports constraint failures as plain text
	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		col := constraintColumn(msg[i+len("UNIQUE constraint failed: "):])
		return &StoreError{
			Code:    CodeUniqueViolation,
			Message: "duplicate key value violates unique constraint",
			Details: fmt.Sprintf("Key (%s) already exists.", col),
		}
	}
	if i := strings.Index(msg, "NOT NULL constraint failed: "); i >= 0 {
		col := constraintColumn(msg[i+len("NOT NULL constraint failed: "):])
		return &StoreError{
			Code:    CodeNotNullViolation,
			Message: fmt.Sprintf("null value in column %q violates not-null constraint", col),
			Column:  col,
		}
	}

	return err
}

// IsAuthExpired reports whether err means the session must be discarded.
func IsAuthExpired(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthExpired) {
		return true
	}
	var se *StoreError
	return errors.As(err, &se) && se.authExpired()
}

// FriendlyMessage renders err the way the CRM shows it to the user.
func FriendlyMessage(err error) string {
	if err == nil {
		return "Ocurrió un error desconocido."
	}

	var se *StoreError
	if !errors.As(err, &se) {
		return err.Error()
	}

	if se.UniqueViolation() {
		if strings.Contains(se.Details, "already exists") {
			return "Error de duplicado: " + se.Details
		}
		return "Error: Se ha violado una restricción de valor único. Es posible que el correo electrónico ya esté en uso."
	}

	if se.NotNullViolation() {
		col := se.Column
		if col == "" {
			if m := columnPattern.FindStringSubmatch(se.Details); m != nil {
				col = m[1]
			} else if m := columnPattern.FindStringSubmatch(se.Message); m != nil {
				col = m[1]
			}
		}
		if col != "" {
			return fmt.Sprintf("Error: El campo '%s' es obligatorio y no puede estar vacío.", col)
		}
		return "Error: Uno de los campos requeridos está vacío."
	}

	msg := se.Message
	if se.Details != "" {
		msg += " | Detalles: " + se.Details
	}
	if se.Hint != "" {
		msg += " | Sugerencia: " + se.Hint
	}
	return msg
}

// "realtors.user_id, realtors.email (2067)" -> "user_id, email"
func constraintColumn(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " ("); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if j := strings.LastIndex(p, "."); j >= 0 {
			p = p[j+1:]
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}
