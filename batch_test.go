// SPDX-License-Identifier: MIT
package jsonchunk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/fisherprime/jsonchunk/lexer"
)

func TestParseAll(t *testing.T) {
	sources := []io.Reader{
		strings.NewReader(`{"id": 1}`),
		iotest.OneByteReader(strings.NewReader(`[true, false]`)),
		strings.NewReader(`[1}`),
		strings.NewReader(`"last"`),
	}

	results, err := ParseAll(context.Background(), sources, WithWorkers(2), WithChunkSize(2))
	if err != nil {
		t.Fatalf("ParseAll() error = %v", err)
	}
	if len(results) != len(sources) {
		t.Fatalf("len(ParseAll()) = %d, want %d", len(results), len(sources))
	}

	wantValues := []interface{}{
		map[string]interface{}{"id": 1.0},
		[]interface{}{true, false},
		nil,
		"last",
	}
	for index, res := range results {
		if index == 2 {
			if !errors.Is(res.Err, lexer.ErrStructural) {
				t.Errorf("ParseAll()[%d].Err = %v, want %v", index, res.Err, lexer.ErrStructural)
			}
			continue
		}

		if res.Err != nil {
			t.Errorf("ParseAll()[%d].Err = %v", index, res.Err)
		}
		if diff := cmp.Diff(wantValues[index], res.Value); diff != "" {
			t.Errorf("ParseAll()[%d] mismatch (-want +got):\n%s", index, diff)
		}
	}
}

func TestParseAll_many(t *testing.T) {
	const count = 200

	sources := make([]io.Reader, count)
	for index := range sources {
		sources[index] = strings.NewReader(fmt.Sprintf(`{"index": %d, "tags": ["a", "b"]}`, index))
	}

	results, err := ParseAll(context.Background(), sources, WithWorkers(8), WithChunkSize(5))
	if err != nil {
		t.Fatalf("ParseAll() error = %v", err)
	}

	for index, res := range results {
		if res.Err != nil {
			t.Fatalf("ParseAll()[%d].Err = %v", index, res.Err)
		}

		o, err := AsObject(res.Value)
		if err != nil {
			t.Fatalf("AsObject() error = %v", err)
		}
		if got, err := GetNumber[int](o, "index"); err != nil || got != index {
			t.Errorf("ParseAll()[%d] index = %d, %v", index, got, err)
		}
	}
}

func TestParseAll_empty(t *testing.T) {
	results, err := ParseAll(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Errorf("ParseAll(nil) = %v, %v, want no results", results, err)
	}
}
