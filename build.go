// SPDX-License-Identifier: MIT
package jsonchunk

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"gitlab.com/fisherprime/jsonchunk/lexer"
)

type (
	// Source defines a pull-based supplier of lexed Items.
	//
	// Next blocks until an Item is available & reports io.EOF once the stream is exhausted;
	// *lexer.Lexer implements it.
	Source interface {
		Next(ctx context.Context) (lexer.Item, error)
	}

	// result is a pulled value or the end of the enclosing collection.
	//
	// A JSON null is a result with a nil value, never an end.
	result struct {
		value interface{}
		end   bool
	}
)

// dump defers the spew rendering of a value until it is formatted.
type dump struct{ v interface{} }

func (d dump) String() string { return spew.Sprint(d.v) }

// Build pulls Items from src until the first complete value is assembled.
//
// Pulling stops as soon as the value resolves; Items following it are left in src. A lexer
// error Item fails the build with the carried error.
func Build(ctx context.Context, src Source) (v interface{}, err error) {
	var res result

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}

		if err != nil {
			fLogger.Debugf("build failed: %v\npartial value: %s", err, dump{res.value})
			v = nil
		}
	}()

	select {
	case <-ctx.Done():
		err = ctx.Err()
		return
	default:
		if res, err = build(ctx, src); err != nil {
			return
		}

		if res.end {
			err = fmt.Errorf("%w: collection end without a value", ErrIncomplete)
			return
		}
		v = res.value
	}

	return
}

// build performs the building grunt work; it pulls a single value or collection end.
func build(ctx context.Context, src Source) (res result, err error) {
	item, err := src.Next(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrIncomplete
		}

		return
	}

	switch item.ID {
	case lexer.ItemNull, lexer.ItemTrue, lexer.ItemFalse, lexer.ItemNumber, lexer.ItemString:
		res.value = item.Val
	case lexer.ItemArrayEnd, lexer.ItemObjectEnd:
		res.end = true
	case lexer.ItemArrayStart:
		return buildArray(ctx, src)
	case lexer.ItemObjectStart:
		return buildObject(ctx, src)
	case lexer.ItemError:
		// Stop input processing.
		err = item.Err
	case lexer.ItemEOF:
		err = ErrIncomplete
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownItem, item.ID)
	}

	return
}

func buildArray(ctx context.Context, src Source) (res result, err error) {
	array := make([]interface{}, 0)
	defer func() { res.value = array }()

	for {
		var child result
		if child, err = build(ctx, src); err != nil || child.end {
			return
		}

		array = append(array, child.value)
	}
}

func buildObject(ctx context.Context, src Source) (res result, err error) {
	object := make(map[string]interface{})
	defer func() { res.value = object }()

	for {
		var key, value result
		if key, err = build(ctx, src); err != nil || key.end {
			return
		}

		name, ok := key.value.(string)
		if !ok {
			err = fmt.Errorf("%w: got %T", ErrKeyNotString, key.value)
			return
		}

		if value, err = build(ctx, src); err != nil {
			return
		}
		if value.end {
			err = fmt.Errorf("%w %q", ErrMissingValue, name)
			return
		}

		// Duplicate keys; the last one wins.
		object[name] = value.value
	}
}
