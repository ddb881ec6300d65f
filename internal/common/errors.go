// Package common defines shared constants and sentinel errors used across
// filehub components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrorUnknownTable = errors.New("unknown table")

	// Manager-level errors.
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorInvalidHandle = errors.New("invalid handle")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorCorruptRecord = errors.New("corrupt record")

	// Generic/internal flow control.
	ErrorInternal = errors.New("internal error")
)
