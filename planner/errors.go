// planner/errors.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package planner

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel all input-validation failures wrap, so
// callers can test with errors.Is(err, planner.ErrInvalidInput) without
// caring which field failed.
var ErrInvalidInput = errors.New("planner: invalid input")

// InvalidInputError names the specific field and reason a call was
// rejected before any planning work began.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("planner: invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
