package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("transaction not found: %d", 9)))
	assert.Equal(t, KindUnauthorized, KindOf(Unauthorized("nope")))
	assert.Equal(t, KindInvalidArgument, KindOf(InvalidArgument("bad kind")))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("inactive")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("listing transactions: %w", NotFound("actor not found: %d", 3))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
}

func TestExternalSyncWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalSync(cause, "fetch failed for account %d", 4)
	assert.Equal(t, KindExternalSync, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "fetch failed for account 4")
	assert.Contains(t, err.Error(), "connection refused")
}
