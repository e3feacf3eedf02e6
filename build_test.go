// SPDX-License-Identifier: MIT
package jsonchunk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"gitlab.com/fisherprime/jsonchunk/lexer"
)

// sliceSource supplies a fixed Item sequence.
type sliceSource struct {
	items []lexer.Item
}

func (s *sliceSource) Next(context.Context) (i lexer.Item, err error) {
	if len(s.items) < 1 {
		err = io.EOF
		return
	}
	i, s.items = s.items[0], s.items[1:]

	return
}

func lexed(chunks ...string) *lexer.Lexer {
	l := lexer.New()
	for _, chunk := range chunks {
		l.Feed(chunk)
	}
	l.Finalize()

	return l
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    interface{}
		wantErr error
	}{
		{name: "null", input: "null", want: nil},
		{name: "true", input: "true", want: true},
		{name: "false", input: " false ", want: false},
		{name: "number", input: "-1.5e2", want: -150.0},
		{name: "string", input: `"hello\nworld"`, want: "hello\nworld"},
		{name: "empty array", input: "[]", want: []interface{}{}},
		{name: "empty object", input: "{}", want: map[string]interface{}{}},
		{
			name:  "array",
			input: `[1, true, "test", null]`,
			want:  []interface{}{1.0, true, "test", nil},
		},
		{
			name:  "nested",
			input: `{"a": [1, [2, {}]], "b": {"c": null, "d": []}}`,
			want: map[string]interface{}{
				"a": []interface{}{1.0, []interface{}{2.0, map[string]interface{}{}}},
				"b": map[string]interface{}{"c": nil, "d": []interface{}{}},
			},
		},
		{
			name:  "duplicate keys",
			input: `{"a":1,"a":2}`,
			want:  map[string]interface{}{"a": 2.0},
		},
		{name: "first value only", input: `[1] [2]`, want: []interface{}{1.0}},

		{name: "empty input", input: "", wantErr: ErrIncomplete},
		{name: "unclosed array", input: "[1, 2", wantErr: ErrIncomplete},
		{name: "unclosed object", input: `{"a": 1`, wantErr: ErrIncomplete},
		{name: "number key", input: `{1: 2}`, wantErr: ErrKeyNotString},
		{name: "array key", input: `{[]: 2}`, wantErr: ErrKeyNotString},
		{name: "missing value", input: `{"a"}`, wantErr: ErrMissingValue},
		{name: "missing nested value", input: `[{"a": 1, "b"}]`, wantErr: ErrMissingValue},
		{name: "lexical", input: `[1, x]`, wantErr: lexer.ErrLexical},
		{name: "structural", input: `[1}`, wantErr: lexer.ErrStructural},
		{name: "unterminated string", input: `"hello`, wantErr: lexer.ErrLexical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(context.Background(), lexed(tt.input))
			if !errors.Is(err, tt.wantErr) || (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Build() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_source(t *testing.T) {
	var (
		arrayStart  = lexer.Item{ID: lexer.ItemArrayStart, Val: '['}
		arrayEnd    = lexer.Item{ID: lexer.ItemArrayEnd, Val: ']'}
		objectStart = lexer.Item{ID: lexer.ItemObjectStart, Val: '{'}
		objectEnd   = lexer.Item{ID: lexer.ItemObjectEnd, Val: '}'}
		one         = lexer.Item{ID: lexer.ItemNumber, Val: 1.0}
		key         = lexer.Item{ID: lexer.ItemString, Val: "k"}
	)

	tests := []struct {
		name    string
		items   []lexer.Item
		want    interface{}
		wantErr error
	}{
		{name: "primitive without eof", items: []lexer.Item{one}, want: 1.0},
		{
			name:  "object",
			items: []lexer.Item{objectStart, key, one, objectEnd},
			want:  map[string]interface{}{"k": 1.0},
		},
		{name: "exhausted", items: []lexer.Item{arrayStart, one}, wantErr: ErrIncomplete},
		{name: "eof item", items: []lexer.Item{arrayStart, {ID: lexer.ItemEOF}}, wantErr: ErrIncomplete},
		{name: "top level end", items: []lexer.Item{arrayEnd}, wantErr: ErrIncomplete},
		{name: "unknown item", items: []lexer.Item{{ID: 99}}, wantErr: ErrUnknownItem},
		{
			name:    "error item",
			items:   []lexer.Item{arrayStart, {ID: lexer.ItemError, Err: lexer.ErrLexical}},
			wantErr: lexer.ErrLexical,
		},
		{
			name:    "end for value",
			items:   []lexer.Item{objectStart, key, arrayEnd},
			wantErr: ErrMissingValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(context.Background(), &sliceSource{items: tt.items})
			if !errors.Is(err, tt.wantErr) || (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Build() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_builderErrorsWrapErrBuild(t *testing.T) {
	for _, err := range []error{ErrKeyNotString, ErrMissingValue, ErrIncomplete, ErrUnknownItem} {
		if !errors.Is(err, ErrBuild) {
			t.Errorf("errors.Is(%v, ErrBuild) = false", err)
		}
	}
}

func TestBuild_stopsAfterValue(t *testing.T) {
	l := lexed("1 2")

	got, err := Build(context.Background(), l)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got != 1.0 {
		t.Errorf("Build() = %v, want 1", got)
	}

	// The second number & the terminal item remain.
	if pending := l.Pending(); pending != 2 {
		t.Errorf("Lexer.Pending() = %d, want 2", pending)
	}
}

func TestBuild_waitsForInput(t *testing.T) {
	l := lexer.New()

	type outcome struct {
		v   interface{}
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := Build(context.Background(), l)
		done <- outcome{v, err}
	}()

	for _, chunk := range []string{`{"ke`, `y": [tr`, `ue, 1`, `2]`, `}`} {
		select {
		case o := <-done:
			t.Fatalf("Build() = %v, %v before the input completed", o.v, o.err)
		case <-time.After(10 * time.Millisecond):
		}
		l.Feed(chunk)
	}

	select {
	case o := <-done:
		if o.err != nil {
			t.Fatalf("Build() error = %v", o.err)
		}
		want := map[string]interface{}{"key": []interface{}{true, 12.0}}
		if diff := cmp.Diff(want, o.v); diff != "" {
			t.Errorf("Build() mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Build() did not resolve")
	}
}

func TestBuild_cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	l := lexer.New()
	l.Feed("[1, 2")

	if _, err := Build(ctx, l); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Build() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

// randomChunks splits s at random rune boundaries.
func randomChunks(rng *rand.Rand, s string) (chunks []string) {
	runes := []rune(s)
	for len(runes) > 0 {
		n := 1 + rng.Intn(len(runes))
		if n > 7 {
			n = 1 + rng.Intn(7)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}

	return
}

func TestBuild_roundTrip(t *testing.T) {
	values := []interface{}{
		nil,
		true,
		false,
		0.0,
		-42.5,
		1e-7,
		6.02214076e23,
		"",
		"plain",
		"esc\"aped\\\n\t\u0001 é 世界",
		[]interface{}{},
		map[string]interface{}{},
		[]interface{}{nil, true, 1.0, "x", []interface{}{[]interface{}{}}, map[string]interface{}{"k": "v"}},
		map[string]interface{}{
			"array":  []interface{}{1.0, 2.0, 3.0},
			"object": map[string]interface{}{"nested": map[string]interface{}{"deep": false}},
			"":       "empty key",
			"key\n":  nil,
		},
	}

	rng := rand.New(rand.NewSource(1))
	for _, want := range values {
		text, err := Serialize(context.Background(), want)
		if err != nil {
			t.Fatalf("Serialize(%v) error = %v", want, err)
		}

		var std interface{}
		if err = json.Unmarshal([]byte(text), &std); err != nil {
			t.Fatalf("json.Unmarshal(%s) error = %v", text, err)
		}
		if diff := cmp.Diff(want, std); diff != "" {
			t.Errorf("json.Unmarshal(%s) mismatch (-want +got):\n%s", text, diff)
		}

		for round := 0; round < 10; round++ {
			got, err := Build(context.Background(), lexed(randomChunks(rng, text)...))
			if err != nil {
				t.Fatalf("Build(%s) error = %v", text, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Build(%s) mismatch (-want +got):\n%s", text, diff)
			}
		}
	}
}

// recordingLogger keeps the arguments of debug messages.
type recordingLogger struct {
	*logrus.Logger
	args [][]interface{}
}

func (r *recordingLogger) Debugf(format string, args ...interface{}) {
	r.args = append(r.args, args)
	r.Logger.Debugf(format, args...)
}

func TestBuild_partialValueDump(t *testing.T) {
	logger := &recordingLogger{Logger: logrus.New()}
	logger.SetOutput(io.Discard)

	SetLogger(logger)
	defer SetLogger(logrus.NewEntry(logrus.New()))

	if _, err := Build(context.Background(), lexed(`[1, {"a"}]`)); !errors.Is(err, ErrMissingValue) {
		t.Fatalf("Build() error = %v, want %v", err, ErrMissingValue)
	}
	if len(logger.args) != 1 || len(logger.args[0]) != 2 {
		t.Fatalf("debug message args = %v, want a single message with 2 args", logger.args)
	}

	// Rendered only when the message is formatted.
	partial, ok := logger.args[0][1].(fmt.Stringer)
	if !ok {
		t.Fatalf("partial value arg is %T, want a fmt.Stringer", logger.args[0][1])
	}
	if got := partial.String(); !strings.Contains(got, "1") {
		t.Errorf("partial value dump = %q, want the built element", got)
	}
}
