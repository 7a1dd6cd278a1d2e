package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestException_IsMatchesKindSentinels(t *testing.T) {
	err := InvalidState("task is %s", "COMPLETED")

	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "task is COMPLETED", err.Error())

	wrapped := fmt.Errorf("complete task: %w", ErrTaskNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.True(t, errors.Is(wrapped, ErrTaskNotFound))
	assert.False(t, errors.Is(wrapped, ErrApplicationNotFound))
}

func TestStatusCodeAndKind(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   Kind
	}{
		{Validation("bad"), http.StatusBadRequest, KindValidation},
		{ErrInvalidCredentials, http.StatusUnauthorized, KindUnauthorized},
		{Forbidden("no"), http.StatusForbidden, KindForbidden},
		{ErrUserNotFound, http.StatusNotFound, KindNotFound},
		{InvalidState("state"), http.StatusConflict, KindInvalidState},
		{Duplicate("again"), http.StatusConflict, KindDuplicate},
		{ErrOptimisticLock, http.StatusConflict, KindConflict},
		{fmt.Errorf("wrapped: %w", ErrTaskBusy), http.StatusConflict, KindConflict},
		{errors.New("boom"), http.StatusInternalServerError, KindInternal},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, StatusCode(tc.err), tc.err.Error())
		assert.Equal(t, tc.kind, KindOf(tc.err), tc.err.Error())
	}
}

func TestNew_UnknownKindIsInternal(t *testing.T) {
	err := New(Kind("mystery"), "odd")
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
}

func TestException_EmptyMessageFallsBackToKind(t *testing.T) {
	assert.Equal(t, "forbidden", ErrForbidden.Error())
}
