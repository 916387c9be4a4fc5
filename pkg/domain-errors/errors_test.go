package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Run("preserves the cause chain", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(cause, CodeStorage, "save record")

		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeStorage, CodeOf(err))
		assert.Contains(t, err.Error(), "save record")
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("nil cause wraps to nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeStorage, "save record"))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("finds the code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeNotFound, "no such record"))
		assert.Equal(t, CodeNotFound, CodeOf(err))
		assert.True(t, IsCode(err, CodeNotFound))
	})

	t.Run("returns empty for foreign errors", func(t *testing.T) {
		assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
		assert.False(t, IsCode(nil, CodeNotFound))
	})
}

func TestErrorsIsMatchesOnCode(t *testing.T) {
	err := Newf(CodeInvalidInput, "field %s is required", "email")
	assert.ErrorIs(t, err, New(CodeInvalidInput, ""))
	assert.NotErrorIs(t, err, New(CodeNotFound, ""))
}
