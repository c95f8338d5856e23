package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := PersistenceError("insert document", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert document")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("process %s: %w", "a.pdf", ExtractionError("open file", errors.New("no such file")))
	assert.Equal(t, KindExtraction, Kind(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, Kind(errors.New("plain")))
	assert.Equal(t, KindUnknown, Kind(nil))
}
