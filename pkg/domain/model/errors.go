package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrTagInvalidInput marks errors caused by the caller's request
	ErrTagInvalidInput = goerr.NewTag("invalid_input")

	// ErrTagTooLarge marks uploads exceeding the configured size limit
	ErrTagTooLarge = goerr.NewTag("too_large")
)

// IsInvalidInput reports whether any error in the chain is tagged invalid_input
func IsInvalidInput(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if goerr.HasTag(e, ErrTagInvalidInput) {
			return true
		}
	}
	return false
}

// IsTooLarge reports whether any error in the chain is tagged too_large
func IsTooLarge(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if goerr.HasTag(e, ErrTagTooLarge) {
			return true
		}
	}
	return false
}
