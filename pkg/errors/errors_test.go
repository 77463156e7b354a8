package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrInvalidTransition, "course already approved"))

	appErr := FromError(wrapped)
	require.Equal(t, ErrInvalidTransition.Code, appErr.Code)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	require.Equal(t, "course already approved", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(stdErrors.New("boom"))
	require.Equal(t, ErrInternal.Code, appErr.Code)
	require.EqualError(t, appErr, "internal server error: boom")
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrForbidden, "only the author may submit")
	require.Equal(t, "forbidden", ErrForbidden.Message)
	require.Equal(t, "only the author may submit", clone.Message)
	require.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("apply: %w", Clone(ErrConflict, "record changed concurrently"))
	require.True(t, stdErrors.Is(err, ErrConflict))
	require.False(t, stdErrors.Is(err, ErrRecordLocked))

	wrapped := Wrap(stdErrors.New("tx aborted"), ErrInvalidTransition.Code, ErrInvalidTransition.Status, "cannot advance")
	require.True(t, stdErrors.Is(wrapped, ErrInvalidTransition))
}
