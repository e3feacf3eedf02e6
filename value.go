// SPDX-License-Identifier: MIT
package jsonchunk

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

type (
	// Object is a view of a built JSON object providing typed member access.
	Object map[string]interface{}

	// Numeric defines the types a JSON number may be read into.
	Numeric interface {
		constraints.Integer | constraints.Float
	}
)

const (
	// ReadErrFmt defines the format for member read errors.
	ReadErrFmt = "failed to read (%s): %w"
)

// Value access errors.
var (
	ErrMissingKey  = errors.New("missing key")
	ErrInvalidType = errors.New("invalid data type")
)

// AsObject obtains an Object view of a built value.
func AsObject(v interface{}) (o Object, err error) {
	switch val := v.(type) {
	case map[string]interface{}:
		o = val
	case Object:
		o = val
	default:
		err = fmt.Errorf("%w: %T is not an object", ErrInvalidType, v)
	}

	return
}

// Number converts a built JSON number to T.
//
// Integer conversions fail for fractional or out of range numbers; float conversions fail for
// finite numbers overflowing T.
func Number[T Numeric](v interface{}) (n T, err error) {
	f, ok := v.(float64)
	if !ok {
		err = fmt.Errorf("%w: %T is not a number", ErrInvalidType, v)
		return
	}

	n = T(f)
	switch {
	case isInteger[T]():
		if float64(n) != f {
			err = fmt.Errorf("%w: %v does not fit %T", ErrInvalidType, f, n)
		}
	case math.IsInf(float64(n), 0) && !math.IsInf(f, 0):
		err = fmt.Errorf("%w: %v overflows %T", ErrInvalidType, f, n)
	}
	if err != nil {
		n = 0
	}

	return
}

func isInteger[T Numeric]() bool {
	half := 0.5
	return T(half) == 0
}

// Get a member of the Object.
func (o Object) Get(key string) (val interface{}, ok bool) {
	val, ok = o[key]
	return
}

// GetString obtains a string member.
func (o Object) GetString(key string) (strVal string, err error) {
	val, err := o.member(key)
	if err != nil {
		return
	}

	var ok bool
	if strVal, ok = val.(string); !ok {
		err = fmt.Errorf(ReadErrFmt, key, ErrInvalidType)
	}

	return
}

// GetBool obtains a boolean member.
func (o Object) GetBool(key string) (boolVal bool, err error) {
	val, err := o.member(key)
	if err != nil {
		return
	}

	var ok bool
	if boolVal, ok = val.(bool); !ok {
		err = fmt.Errorf(ReadErrFmt, key, ErrInvalidType)
	}

	return
}

// GetArray obtains an array member.
func (o Object) GetArray(key string) (arrVal []interface{}, err error) {
	val, err := o.member(key)
	if err != nil {
		return
	}

	var ok bool
	if arrVal, ok = val.([]interface{}); !ok {
		err = fmt.Errorf(ReadErrFmt, key, ErrInvalidType)
	}

	return
}

// GetObject obtains an object member.
func (o Object) GetObject(key string) (objVal Object, err error) {
	val, err := o.member(key)
	if err != nil {
		return
	}

	if objVal, err = AsObject(val); err != nil {
		err = fmt.Errorf(ReadErrFmt, key, err)
	}

	return
}

// IsNull reports whether a member is present & null.
func (o Object) IsNull(key string) bool {
	val, ok := o[key]
	return ok && val == nil
}

// GetNumber obtains a numeric member of an Object as T.
func GetNumber[T Numeric](o Object, key string) (n T, err error) {
	val, err := o.member(key)
	if err != nil {
		return
	}

	if n, err = Number[T](val); err != nil {
		err = fmt.Errorf(ReadErrFmt, key, err)
	}

	return
}

func (o Object) member(key string) (val interface{}, err error) {
	val, ok := o[key]
	if !ok {
		err = fmt.Errorf(ReadErrFmt, key, ErrMissingKey)
	}

	return
}
