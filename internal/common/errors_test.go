package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateKeyError_MatchesSentinel(t *testing.T) {
	cause := errors.New("unique violation")
	err := fmt.Errorf("create user: %w", &DuplicateKeyError{Field: "email", Err: cause})

	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorIs(t, err, cause)

	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
	assert.Equal(t, "duplicate key on email", dup.Error())
}

func TestDuplicateKeyError_DoesNotMatchOtherSentinels(t *testing.T) {
	err := &DuplicateKeyError{Field: "username"}
	assert.NotErrorIs(t, err, ErrorNotFound)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
}
