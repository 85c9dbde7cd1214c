package asset

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound          = errors.New("asset not found")
	ErrValidation        = errors.New("invalid asset input")
	ErrOwnerNotActivated = errors.New("owner wallet not activated")
	ErrAlreadyTokenized  = errors.New("asset already tokenized")
	ErrNotTokenized      = errors.New("asset not tokenized")
	ErrAlreadyRedeemed   = errors.New("asset already redeemed")
)

// ValidationError reports which field failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
