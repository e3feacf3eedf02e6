// SPDX-License-Identifier: MIT

// Package lexer incrementally tokenizes JSON text fed in arbitrarily split chunks.
package lexer

// REF: https://gitlab.com/fisherprime/go-ddbms/-/blob/master/internal/v1/lexer.go
// REF: https://go.dev/talks/2011/lex.slide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

type (
	// stateFn is a lexing state; it returns the next state or nil to wait for more input.
	stateFn func(*Lexer) stateFn

	// scope identifies the innermost open bracket.
	scope uint8

	// status is the run state of a Lexer; the zero value is running & a halt is permanent.
	status struct {
		reason error
	}

	// Lexer defines a resumable JSON tokenizer.
	//
	// Input is supplied through Feed (or Write) & terminated by a single Finalize (or Close);
	// lexed Items are consumed through Next. A Lexer must be fed from a single goroutine, the
	// consumer may run on another.
	Lexer struct {
		debug    bool
		maxDepth int
		logger   logrus.FieldLogger

		// items queues lexed Items for the consumer.
		items *queue

		// buffer is a slice of runes yet to be discarded.
		buffer []rune
		// cursor is the current buffer position.
		cursor int
		// tokenStart is the buffer position of the token being lexed.
		tokenStart int
		// commit is the buffer position before which runes have been consumed & may be discarded.
		commit int
		// offset is the input offset (in runes) of buffer[0].
		offset int

		// pending holds an incomplete UTF-8 sequence carried between writes.
		pending []byte

		scopes   []scope
		finished bool
		status   status
	}
)

const (
	scopeNone scope = iota
	scopeArray
	scopeObject
)

// DefaultChunkSize is the read size used by Lex.
const DefaultChunkSize = 512

// Lexing errors.
var (
	ErrLexical    = errors.New("lexical error")
	ErrStructural = errors.New("structural error")

	ErrHalted    = errors.New("lexer halted")
	ErrFinalized = errors.New("lexer finalized")
)

// Improves on performance compared to ORs.
var whitespace = [256]bool{
	' ':  true,
	'\t': true,
	'\r': true,
	'\n': true,
}

// New creates a Lexer awaiting input.
func New(opts ...Option) *Lexer {
	l := &Lexer{
		logger: logrus.New(),
		items:  newQueue(),
		buffer: make([]rune, 0, defBufferSize),
		scopes: make([]scope, 0, 8),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Logger obtains the logger.
func (l *Lexer) Logger() logrus.FieldLogger { return l.logger }

// Halted reports whether lexing stopped on an error.
func (l *Lexer) Halted() bool { return l.status.halted() }

// Err obtains the error that halted the Lexer, if any.
func (l *Lexer) Err() error { return l.status.reason }

// Finished reports whether Finalize has been called.
func (l *Lexer) Finished() bool { return l.finished }

// Depth obtains the current bracket nesting depth.
func (l *Lexer) Depth() int { return len(l.scopes) }

// Buffered obtains the count of runes held for an incomplete token.
func (l *Lexer) Buffered() int { return len(l.buffer) }

// Pending obtains the count of lexed Items not yet consumed.
func (l *Lexer) Pending() int { return l.items.size() }

// Feed appends a chunk of input & emits every token it completes.
//
// Feed does not block; a token left incomplete by the chunk is re-scanned on the next Feed.
func (l *Lexer) Feed(chunk string) {
	if l.status.halted() || l.finished {
		l.logger.Debugf("lexer: discarding %d byte chunk fed to a terminated lexer", len(chunk))
		return
	}

	for _, r := range chunk {
		l.buffer = append(l.buffer, r)
	}
	l.lex()
}

// Finalize marks the end of input, emits any trailing token & the terminal ItemEOF.
//
// Finalize is a no-op on a halted or already finalized Lexer.
func (l *Lexer) Finalize() {
	if l.status.halted() || l.finished {
		return
	}
	l.finished = true

	l.lex()
	if l.status.halted() {
		return
	}

	l.push(Item{ID: ItemEOF})
}

// Write implements io.Writer, decoding p as UTF-8.
//
// A multi-byte sequence split across writes is held back until it completes.
func (l *Lexer) Write(p []byte) (n int, err error) {
	switch {
	case l.status.halted():
		err = fmt.Errorf("%w: %v", ErrHalted, l.status.reason)
		return
	case l.finished:
		err = ErrFinalized
		return
	}
	n = len(p)

	data := p
	if len(l.pending) > 0 {
		data = append(l.pending, p...)
		l.pending = nil
	}

	cut := len(data)
	for index := len(data) - 1; index >= 0 && index >= len(data)-utf8.UTFMax; index-- {
		if utf8.RuneStart(data[index]) {
			if !utf8.FullRune(data[index:]) {
				cut = index
			}
			break
		}
	}

	chunk := string(data[:cut])
	if cut < len(data) {
		l.pending = append([]byte(nil), data[cut:]...)
	}
	l.Feed(chunk)

	return
}

// Close implements io.Closer; it flushes held back bytes & finalizes the Lexer.
//
// Lexing errors are reported through the Item stream, not by Close.
func (l *Lexer) Close() error {
	if len(l.pending) > 0 {
		// An incomplete sequence at the end of input decodes to utf8.RuneError.
		chunk := string(l.pending)
		l.pending = nil
		l.Feed(chunk)
	}
	l.Finalize()

	return nil
}

// Lex feeds the Lexer from source in chunkSize reads until the source is exhausted, the Lexer
// halts or the context is done.
//
// A read error or cancellation halts the Lexer with that error. ErrFinalized is returned for a
// finalized Lexer.
func (l *Lexer) Lex(ctx context.Context, source io.Reader, chunkSize int) (err error) {
	if l.finished {
		err = ErrFinalized
		return
	}

	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	chunk := make([]byte, chunkSize)

	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			l.halt(err)

			return
		default:
		}

		n, rErr := source.Read(chunk)
		if n > 0 {
			if _, err = l.Write(chunk[:n]); err != nil {
				if errors.Is(err, ErrHalted) {
					// The error Item is already queued.
					err = nil
				}

				return
			}
		}

		switch {
		case rErr == io.EOF:
			return l.Close()
		case rErr != nil:
			err = rErr
			l.halt(err)

			return
		}
	}
}

// Next returns the next lexed Item, waiting for one to be emitted.
//
// io.EOF is returned once the terminal ItemEOF has been consumed.
func (l *Lexer) Next(ctx context.Context) (Item, error) { return l.items.pop(ctx) }

// Item return a lexed Item, waiting for one to be emitted.
//
// ok is false once the terminal ItemEOF has been consumed.
func (l *Lexer) Item() (i Item, ok bool) {
	i, err := l.items.pop(context.Background())
	ok = err == nil

	return
}

// lex runs the state functions over the buffer then discards consumed runes.
func (l *Lexer) lex() {
	l.cursor = l.commit
	for state := lexWhitespace; state != nil; {
		state = state(l)
	}
	l.discard()
}

// discard the buffer content before the commit boundary.
func (l *Lexer) discard() {
	if l.commit == 0 {
		return
	}

	n := copy(l.buffer, l.buffer[l.commit:])
	l.buffer = l.buffer[:n]
	l.offset += l.commit
	l.cursor -= l.commit
	l.tokenStart -= l.commit
	l.commit = 0
}

func (l *Lexer) atEnd() bool { return l.cursor >= len(l.buffer) }

// next returns the rune under the cursor & advances past it.
func (l *Lexer) next() (r rune) {
	if l.atEnd() {
		return emptyRune
	}
	r = l.buffer[l.cursor]
	l.cursor++

	return
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return emptyRune
	}

	return l.buffer[l.cursor]
}

func (l *Lexer) lexeme() []byte { return []byte(string(l.buffer[l.tokenStart:l.cursor])) }

func (l *Lexer) top() scope {
	if len(l.scopes) == 0 {
		return scopeNone
	}

	return l.scopes[len(l.scopes)-1]
}

// lexWhitespace discards whitespace up to the next token.
func lexWhitespace(l *Lexer) stateFn {
	for !l.atEnd() && isWhitespace(l.buffer[l.cursor]) {
		l.cursor++
	}
	l.commit = l.cursor
	l.tokenStart = l.cursor

	if l.atEnd() {
		return nil
	}

	return lexToken
}

// lexToken dispatches on the first rune of a token.
func lexToken(l *Lexer) stateFn {
	r := l.next()

	switch {
	case r == 'n':
		return l.lexLiteral("null", ItemNull, nil)
	case r == 't':
		return l.lexLiteral("true", ItemTrue, true)
	case r == 'f':
		return l.lexLiteral("false", ItemFalse, false)
	case r == '-' || isDigit(r):
		return lexNumber
	case r == '"':
		return lexString
	case r == '[':
		return l.open(scopeArray, ItemArrayStart, r)
	case r == '{':
		return l.open(scopeObject, ItemObjectStart, r)
	case r == ']':
		return l.close(scopeArray, ItemArrayEnd, r)
	case r == '}':
		return l.close(scopeObject, ItemObjectEnd, r)
	case r == ':':
		if l.top() != scopeObject {
			return l.unexpected(ErrStructural, r, "outside of an object")
		}
		l.commit = l.cursor

		return lexWhitespace
	case r == ',':
		if l.top() == scopeNone {
			return l.unexpected(ErrStructural, r, "outside of an array or object")
		}
		l.commit = l.cursor

		return lexWhitespace
	default:
		return l.unexpected(ErrLexical, r, "")
	}
}

// lexLiteral matches the remainder of a `null`, `true` or `false` literal.
func (l *Lexer) lexLiteral(literal string, id ItemID, val interface{}) stateFn {
	for _, want := range literal[1:] {
		if l.atEnd() {
			if l.finished {
				return l.fail(ErrLexical, "unexpected end of input in literal %q at offset %d",
					string(l.lexeme()), l.offset+l.cursor)
			}

			return nil
		}

		if r := l.next(); r != want {
			return l.unexpected(ErrLexical, r, "in literal "+literal)
		}
	}

	return l.emit(id, val)
}

// lexNumber scans the remainder of a number.
//
// The lexeme is emitted only once a delimiter follows it or the input is finalized.
func lexNumber(l *Lexer) stateFn {
	decimal, exponent, sign := true, true, false
	complete := l.finished

scan:
	for !l.atEnd() {
		expectSign := sign
		sign = false

		switch r := l.peek(); {
		case isDigit(r):
		case r == '.' && decimal:
			decimal = false
		case (r == 'e' || r == 'E') && exponent:
			exponent, sign = false, true
		case (r == '+' || r == '-') && expectSign:
		default:
			complete = true
			break scan
		}
		l.cursor++
	}

	if !complete {
		return nil
	}

	lexeme := l.lexeme()
	if !json.Valid(lexeme) {
		return l.fail(ErrLexical, "malformed number %q at offset %d", string(lexeme),
			l.offset+l.tokenStart)
	}

	// Magnitudes beyond float64 decode to +Inf or -Inf.
	f, err := strconv.ParseFloat(string(lexeme), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return l.fail(ErrLexical, "malformed number %q at offset %d", string(lexeme),
			l.offset+l.tokenStart)
	}

	return l.emit(ItemNumber, f)
}

// lexString scans the remainder of a string up to the closing quote.
func lexString(l *Lexer) stateFn {
	for !l.atEnd() {
		r := l.next()
		if r == '"' {
			var s string
			if err := json.Unmarshal(l.lexeme(), &s); err != nil {
				return l.fail(ErrLexical, "malformed string %q at offset %d", string(l.lexeme()),
					l.offset+l.tokenStart)
			}

			return l.emit(ItemString, s)
		}

		if r == '\\' {
			if l.atEnd() {
				break
			}
			l.cursor++
		}
	}

	if l.finished {
		return l.fail(ErrLexical, "unterminated string %q at offset %d", string(l.lexeme()),
			l.offset+l.tokenStart)
	}

	return nil
}

func (l *Lexer) open(s scope, id ItemID, r rune) stateFn {
	if l.maxDepth > 0 && len(l.scopes) >= l.maxDepth {
		return l.unexpected(ErrStructural, r, fmt.Sprintf("exceeding max depth %d", l.maxDepth))
	}
	l.scopes = append(l.scopes, s)

	return l.emit(id, r)
}

func (l *Lexer) close(s scope, id ItemID, r rune) stateFn {
	if l.top() != s {
		return l.unexpected(ErrStructural, r, "without a matching opening bracket")
	}
	l.scopes = l.scopes[:len(l.scopes)-1]

	return l.emit(id, r)
}

// emit queues a completed token & commits its lexeme.
func (l *Lexer) emit(id ItemID, val interface{}) stateFn {
	if l.debug {
		l.logger.Debugf("lexer emit: %s %q", id, string(l.buffer[l.tokenStart:l.cursor]))
	}

	l.push(Item{ID: id, Val: val})
	l.commit = l.cursor

	return lexWhitespace
}

func (l *Lexer) push(i Item) { l.items.push(i) }

// unexpected halts on the rune preceding the cursor.
func (l *Lexer) unexpected(kind error, r rune, detail string) stateFn {
	if detail != "" {
		detail = " " + detail
	}

	return l.fail(kind, "unexpected character %q%s at offset %d", r, detail, l.offset+l.cursor-1)
}

// fail halts the Lexer with a formatted error of the given kind.
func (l *Lexer) fail(kind error, format string, args ...interface{}) stateFn {
	l.halt(fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
	return nil
}

// halt transitions to the halted status, emitting the error & terminal Items.
//
// Only the first call has an effect & none once the terminal ItemEOF is queued.
func (l *Lexer) halt(err error) {
	if l.items.terminated() {
		l.logger.Debugf("lexer: ignoring %v on a terminated lexer", err)
		return
	}
	if !l.status.halt(err) {
		return
	}
	l.logger.Debugf("lexer halted: %v", err)

	l.push(Item{ID: ItemError, Err: err})
	l.push(Item{ID: ItemEOF})

	l.buffer = l.buffer[:0]
	l.pending = nil
	l.cursor, l.tokenStart, l.commit = 0, 0, 0
}

func (s *status) halt(err error) bool {
	if s.reason != nil {
		return false
	}
	s.reason = err

	return true
}

func (s *status) halted() bool { return s.reason != nil }

// isWhitespace return true for space, tab, newline & carrier return.
func isWhitespace(r rune) bool { return r < 256 && whitespace[r] }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
