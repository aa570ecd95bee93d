package lead

import (
	"errors"
	"fmt"
)

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrFullNameRequired = errors.New("full_name is required")
	ErrInvalidDate      = errors.New("invalid date")
)

// EnumError rejects a value outside a closed enumeration.
type EnumError struct {
	Field string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("%s: unknown value %q", e.Field, e.Value)
}
