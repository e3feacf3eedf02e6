// SPDX-License-Identifier: MIT
package jsonchunk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go4.org/mem"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gitlab.com/fisherprime/jsonchunk/internal/escape"
)

const serializeBufferSize = 16

// Serialization errors.
var (
	ErrUnsupportedType  = errors.New("unsupported value type")
	ErrUnsupportedValue = errors.New("unsupported value")
)

// Serialize transforms a built value into compact JSON text.
//
// Object keys are written in sorted order so equal values yield equal output.
func Serialize(ctx context.Context, v interface{}) (output string, err error) {
	serChan := make(chan string, serializeBufferSize)
	errChan := make(chan error, 1)
	go func() {
		defer close(serChan)
		errChan <- serialize(ctx, v, serChan)
	}()

	var buffer strings.Builder
	for fragment := range serChan {
		// Invalidated on error, keep draining so the producer can terminate.
		buffer.WriteString(fragment)
	}

	if err = <-errChan; err != nil {
		return
	}
	output = buffer.String()

	return
}

// serialize performs the serialization grunt work.
func serialize(ctx context.Context, v interface{}, serChan chan<- string) (err error) {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	switch val := v.(type) {
	case nil:
		serChan <- "null"
	case bool:
		serChan <- strconv.FormatBool(val)
	case float64:
		return serializeNumber(val, serChan)
	case float32:
		return serializeNumber(float64(val), serChan)
	case int:
		serChan <- strconv.Itoa(val)
	case int64:
		serChan <- strconv.FormatInt(val, 10)
	case string:
		serChan <- `"` + string(escape.Quote(mem.S(val))) + `"`
	case []interface{}:
		serChan <- "["
		for index := range val {
			if index > 0 {
				serChan <- ","
			}
			if err = serialize(ctx, val[index], serChan); err != nil {
				return
			}
		}
		serChan <- "]"
	case Object:
		return serializeObject(ctx, val, serChan)
	case map[string]interface{}:
		return serializeObject(ctx, val, serChan)
	default:
		err = fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}

	return
}

func serializeNumber(f float64, serChan chan<- string) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
	}
	serChan <- strconv.FormatFloat(f, 'g', -1, 64)

	return nil
}

func serializeObject(ctx context.Context, object map[string]interface{}, serChan chan<- string) (err error) {
	// Map iteration order is random; sort for a stable output.
	keys := maps.Keys(object)
	slices.Sort(keys)

	serChan <- "{"
	for index, key := range keys {
		if index > 0 {
			serChan <- ","
		}
		serChan <- `"` + string(escape.Quote(mem.S(key))) + `":`

		if err = serialize(ctx, object[key], serChan); err != nil {
			return
		}
	}
	serChan <- "}"

	return
}
