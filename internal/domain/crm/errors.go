package crm

import (
	"errors"
	"fmt"

	"realtorcrm/internal/domain/lead"
	"realtorcrm/internal/pkg/dberr"
)

var (
	ErrNotPermitted    = errors.New("lead belongs to another user")
	ErrSilentRejection = errors.New("store matched no rows")
	ErrSessionExpired  = errors.New("session expired")
	ErrLeadNotLoaded   = errors.New("lead not in workspace")
)

// Kind classifies a failed operation for the caller.
type Kind int

const (
	KindTransient Kind = iota
	KindValidation
	KindRejected
	KindSilentRejection
	KindNotPermitted
	KindNotFound
	KindSessionExpired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	case KindSilentRejection:
		return "silent_rejection"
	case KindNotPermitted:
		return "not_permitted"
	case KindNotFound:
		return "not_found"
	case KindSessionExpired:
		return "session_expired"
	default:
		return "transient"
	}
}

// Operation names, also used as metric labels.
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpTransition = "transition"
	OpDelete     = "delete"
	OpRefresh    = "refresh"
	OpActivities = "activities"
)

var opPrefix = map[string]string{
	OpCreate:     "Error al guardar: ",
	OpUpdate:     "Error al guardar: ",
	OpTransition: "Error al actualizar: ",
	OpDelete:     "Error al eliminar: ",
	OpRefresh:    "Error al cargar: ",
	OpActivities: "Error al cargar actividades: ",
}

// MutationError is returned by every Coordinator operation that fails.
// Message is ready to show to the user.
type MutationError struct {
	Op      string
	Kind    Kind
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// FriendlyMessage renders any coordinator or store error for display.
func FriendlyMessage(err error) string {
	var me *MutationError
	if errors.As(err, &me) && me.Message != "" {
		return me.Message
	}
	switch {
	case errors.Is(err, ErrNotPermitted):
		return "No tienes permiso para modificar este realtor."
	case errors.Is(err, ErrSilentRejection):
		return "El realtor no existe o no tienes permiso para modificarlo."
	case errors.Is(err, ErrSessionExpired):
		return "Tu sesión ha expirado. Inicia sesión de nuevo."
	case errors.Is(err, ErrLeadNotLoaded), errors.Is(err, lead.ErrLeadNotFound):
		return "Realtor no encontrado."
	}
	return dberr.FriendlyMessage(err)
}

func classify(err error) Kind {
	var enumErr *lead.EnumError
	var se *dberr.StoreError
	switch {
	case dberr.IsAuthExpired(err), errors.Is(err, ErrSessionExpired):
		return KindSessionExpired
	case errors.Is(err, ErrNotPermitted):
		return KindNotPermitted
	case errors.Is(err, ErrSilentRejection):
		return KindSilentRejection
	case errors.Is(err, ErrLeadNotLoaded), errors.Is(err, lead.ErrLeadNotFound):
		return KindNotFound
	case errors.As(err, &enumErr),
		errors.Is(err, lead.ErrFullNameRequired),
		errors.Is(err, lead.ErrInvalidDate):
		return KindValidation
	case errors.As(err, &se):
		return KindRejected
	}
	return KindTransient
}

func newMutationError(op string, err error) *MutationError {
	kind := classify(err)
	if kind == KindSessionExpired && !errors.Is(err, ErrSessionExpired) {
		err = fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return &MutationError{
		Op:      op,
		Kind:    kind,
		Message: opPrefix[op] + FriendlyMessage(err),
		Err:     err,
	}
}
