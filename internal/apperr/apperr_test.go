package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "feed %q not found", "x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("driver: bad connection")))
	assert.Equal(t, KindInternal, KindOf(Internal(errors.New("boom"))))

	// Kind survives wrapping by callers.
	wrapped := fmt.Errorf("adding items: %w", New(KindInsufficientStock, "insufficient"))
	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindInsufficientStock))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, `feed "x" not found`, MessageOf(New(KindNotFound, "feed %q not found", "x")))
	// Raw errors never leak their text to clients.
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: relation does not exist")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, KindInternal, "publishing event")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "publishing event", MessageOf(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindPermission, http.StatusForbidden},
		{KindInsufficientStock, http.StatusUnprocessableEntity},
		{KindDuplicateFeed, http.StatusConflict},
		{KindConflict, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(New(tt.kind, "x")))
		})
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}
