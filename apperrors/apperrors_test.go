package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsClassified(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("todo not found"))

	e := As(err)
	assert.Equal(t, http.StatusNotFound, e.Code.Status)
	assert.Equal(t, "todo not found", e.Message)
}

func TestAsUnclassifiedIsInternal(t *testing.T) {
	cause := errors.New("connection refused")

	e := As(cause)
	assert.Equal(t, CodeInternal, e.Code)
	assert.Equal(t, "internal server error", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestConflictMapsToBadRequest(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, As(Conflict("email already registered")).Code.Status)
}
