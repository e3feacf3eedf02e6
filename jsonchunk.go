// SPDX-License-Identifier: MIT

// Package jsonchunk materializes JSON values from text delivered in arbitrarily split chunks.
//
// The lexer sub-package turns chunks into a token stream; Build pulls from that stream &
// assembles the first complete value. Parse wires both to an io.Reader & returns a Future.
//
// Values are represented as nil, bool, float64, string, []interface{} & map[string]interface{}.
package jsonchunk

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Building errors.
var (
	ErrBuild = errors.New("failed to build value")

	ErrKeyNotString = fmt.Errorf("%w: key must be string", ErrBuild)
	ErrMissingValue = fmt.Errorf("%w: missing value for key", ErrBuild)
	ErrIncomplete   = fmt.Errorf("%w: stream ended before a value completed", ErrBuild)
	ErrUnknownItem  = fmt.Errorf("%w: unknown item", ErrBuild)

	ErrPanicked = errors.New("recovery from panic")
)

var fLogger logrus.FieldLogger = logrus.NewEntry(logrus.New())

// SetLogger configures a logrus.FieldLogger for the package.
func SetLogger(l logrus.FieldLogger) { fLogger = l }
