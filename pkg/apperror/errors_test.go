package apperror

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMapFirstWins(t *testing.T) {
	err := NewValidationError([]FieldError{
		{Field: "email", Message: "Email is required"},
		{Field: "email", Message: "Email is not valid"},
		{Field: "name", Message: "Name is required"},
	})

	m := err.ErrorMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "Email is required", m["email"])
	assert.Equal(t, "Name is required", m["name"])
}

func TestErrorMapEmpty(t *testing.T) {
	assert.Nil(t, NewConflictError("busy").ErrorMap())
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("cart", "Cart is empty")

	assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	require.Len(t, err.Errors, 1)
	assert.Equal(t, "cart", err.Errors[0].Field)
}

func TestGetAppErrorWrapsUnknownErrors(t *testing.T) {
	appErr := GetAppError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)

	same := GetAppError(ErrNotFound)
	assert.Equal(t, http.StatusNotFound, same.Code)
}
