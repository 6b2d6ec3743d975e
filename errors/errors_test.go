package errors_test

import (
	"errors"
	"testing"

	fatErrors "github.com/dargueta/fat16ro/errors"
	"github.com/stretchr/testify/assert"
)

func TestFatErrorWithMessage(t *testing.T) {
	err := fatErrors.ErrCorruptFat.WithMessage("copy 1 differs from copy 0 at byte 40")
	assert.Equal(
		t,
		"corrupt file allocation table: copy 1 differs from copy 0 at byte 40",
		err.Error(),
	)
	assert.ErrorIs(t, err, fatErrors.ErrCorruptFat)
}

func TestFatErrorWrap(t *testing.T) {
	originalErr := errors.New("unexpected EOF")
	err := fatErrors.ErrIoRange.Wrap(originalErr)

	assert.ErrorIs(t, err, fatErrors.ErrIoRange)
	assert.ErrorIs(t, err, originalErr)
}

func TestFatErrorDistinctKinds(t *testing.T) {
	err := fatErrors.ErrNotFound.WithMessage("A.TXT")
	assert.NotErrorIs(t, err, fatErrors.ErrInvalidVolume)
}
