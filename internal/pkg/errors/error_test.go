package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorCodeAndStatus(t *testing.T) {
	err := New(ErrSavedSearchNotFound)
	assert.Equal(t, ErrSavedSearchNotFound, ExtractCode(err))
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrStoreUnavailable)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrStoreUnavailable, ExtractCode(err))
}

func TestIsMatchesCode(t *testing.T) {
	err := Wrap(fmt.Errorf("boom"), ErrSearchStoreFailed)
	assert.True(t, Is(err, ErrSearchStoreFailed))
	assert.False(t, Is(err, ErrInvalidParams))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(New(ErrStoreUnavailable)))
	assert.True(t, IsTransient(New(ErrSearchStoreFailed)))
	assert.False(t, IsTransient(New(ErrInvalidParams)))
	assert.False(t, IsTransient(fmt.Errorf("plain error")))
}

func TestExtractCodeUnknownError(t *testing.T) {
	assert.Equal(t, ErrInternalServer, ExtractCode(fmt.Errorf("plain")))
}
