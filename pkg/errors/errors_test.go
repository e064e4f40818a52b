package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatusMapsSentinels(t *testing.T) {
	tests := []struct {
		status   int
		expected *Error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusConflict, ErrConflict},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusBadGateway, ErrUpstream},
	}
	for _, tc := range tests {
		err := FromStatus(tc.status, []byte(" backend says no "))
		assert.True(t, errors.Is(err, tc.expected), "status %d", tc.status)
		assert.Equal(t, tc.status, err.Status)
		assert.Equal(t, "backend says no", err.Message)
	}
}

func TestFromStatusKeepsDefaultMessageWithoutBody(t *testing.T) {
	err := FromStatus(http.StatusNotFound, nil)
	assert.Equal(t, ErrNotFound.Message, err.Message)
	assert.True(t, IsNotFound(err))
}

func TestFromStatusTruncatesOnRuneBoundary(t *testing.T) {
	// "가" is three bytes, so 171 of them straddle the 512 byte limit.
	body := "x" + strings.Repeat("가", 171)
	require.Greater(t, len(body), maxBodyMessage)

	err := FromStatus(http.StatusInternalServerError, []byte(body))
	assert.True(t, utf8.ValidString(err.Message))
	assert.LessOrEqual(t, len(err.Message), maxBodyMessage)
	assert.Equal(t, "x"+strings.Repeat("가", 170), err.Message)
}

func TestCloneComparesByCode(t *testing.T) {
	err := Clone(ErrWindowClosed, "closed")
	assert.True(t, errors.Is(err, ErrWindowClosed))
	assert.False(t, errors.Is(err, ErrAlreadyDecided))
}
