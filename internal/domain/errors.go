// Package domain defines shared error kinds for the tramites backend.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies recoverable failures by the pipeline stage that produced them.
type ErrorKind string

const (
	KindUnknown     ErrorKind = ""
	KindExtraction  ErrorKind = "extraction"
	KindEmbedding   ErrorKind = "embedding"
	KindPersistence ErrorKind = "persistence"
	KindGeneration  ErrorKind = "generation"
	KindValidation  ErrorKind = "validation"
)

// Error carries an error kind alongside the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func ExtractionError(message string, err error) *Error {
	return NewError(KindExtraction, message, err)
}

func EmbeddingError(message string, err error) *Error {
	return NewError(KindEmbedding, message, err)
}

func PersistenceError(message string, err error) *Error {
	return NewError(KindPersistence, message, err)
}

func GenerationError(message string, err error) *Error {
	return NewError(KindGeneration, message, err)
}

func ValidationError(message string, err error) *Error {
	return NewError(KindValidation, message, err)
}

// Kind returns the kind of err if it is (or wraps) a domain error, or
// KindUnknown otherwise.
func Kind(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
