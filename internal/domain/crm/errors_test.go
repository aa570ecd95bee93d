package crm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"realtorcrm/internal/domain/lead"
	"realtorcrm/internal/pkg/dberr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"auth expired", &dberr.StoreError{Message: "JWT expired"}, KindSessionExpired},
		{"not permitted", ErrNotPermitted, KindNotPermitted},
		{"silent", fmt.Errorf("delete: %w", ErrSilentRejection), KindSilentRejection},
		{"not loaded", ErrLeadNotLoaded, KindNotFound},
		{"enum", &lead.EnumError{Field: "team_size", Value: "x"}, KindValidation},
		{"name", lead.ErrFullNameRequired, KindValidation},
		{"store", &dberr.StoreError{Code: dberr.CodeUniqueViolation}, KindRejected},
		{"network", errors.New("dial tcp: connection refused"), KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestNewMutationError(t *testing.T) {
	me := newMutationError(OpDelete, ErrSilentRejection)
	assert.Equal(t, KindSilentRejection, me.Kind)
	assert.Equal(t, "Error al eliminar: El realtor no existe o no tienes permiso para modificarlo.", me.Message)
	assert.ErrorIs(t, me, ErrSilentRejection)

	me = newMutationError(OpRefresh, &dberr.StoreError{Code: dberr.CodeInvalidAuth, Message: "invalid jwt"})
	assert.Equal(t, KindSessionExpired, me.Kind)
	assert.ErrorIs(t, me, ErrSessionExpired)

	me = newMutationError(OpCreate, &dberr.StoreError{Message: "boom", Hint: "retry"})
	assert.Equal(t, "Error al guardar: boom | Sugerencia: retry", me.Message)
	assert.Equal(t, me.Message, FriendlyMessage(me))
}
