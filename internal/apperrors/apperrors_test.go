// internal/apperrors/apperrors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotFound, "listing not found")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := New(KindInsufficientStock, "requested 2 units, 1 available")
	wrapped := fmt.Errorf("settle purchase: %w", base)

	assert.True(t, IsKind(wrapped, KindInsufficientStock))
	assert.False(t, IsKind(wrapped, KindOutOfStock))
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	a := New(KindInvalidTransition, "cannot refund pending purchase")
	b := New(KindInvalidTransition, "different message")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(KindValidation, "")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage(cause)

	assert.Equal(t, KindStorageUnavailable, KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestErrorString(t *testing.T) {
	err := Newf(KindOutOfStock, "listing is %s", "archived")
	assert.Contains(t, err.Error(), "out_of_stock")
	assert.Contains(t, err.Error(), "listing is archived")
}
