package lexer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"mython/internal/token"
)

// LexerError reports source text that cannot be tokenized, and failed
// Expect* checks.
type LexerError struct {
	Message string
}

func (e *LexerError) Error() string { return e.Message }

func newError(format string, a ...any) *LexerError {
	return &LexerError{Message: fmt.Sprintf(format, a...)}
}

// Lexer turns a byte stream into the token stream described by the language:
// logical lines with synthetic INDENT/DEDENT tokens, each line terminated by
// one NEWLINE, the whole stream by one EOF. Tokens are materialized one
// logical line at a time; Next serves from that buffer.
type Lexer struct {
	input   *bufio.Reader
	tokens  []token.Token // tokens of the current logical line
	index   int           // next unserved token in tokens
	indent  int           // current indent, counted in spaces
	current token.Token
}

// New reads eagerly so that Current is valid immediately.
func New(input io.Reader) (*Lexer, error) {
	l := &Lexer{input: bufio.NewReader(input)}
	if _, err := l.Next(); err != nil {
		return nil, err
	}
	return l, nil
}

// Current returns the token most recently produced. It is stable until the
// next call to Next.
func (l *Lexer) Current() token.Token {
	return l.current
}

// Next advances the stream and returns the new current token. After EOF has
// been served, further calls keep returning EOF.
func (l *Lexer) Next() (token.Token, error) {
	if l.index >= len(l.tokens) {
		if err := l.refill(); err != nil {
			return token.Token{}, err
		}
	}
	l.current = l.tokens[l.index]
	l.index++
	return l.current, nil
}

// refill reads source lines until a non-empty one and converts the indent
// delta into INDENT/DEDENT tokens ahead of the line's own tokens. Blank and
// comment-only lines contribute nothing, not even their indentation.
func (l *Lexer) refill() error {
	ln, err := readLine(l.input)
	if err != nil {
		return err
	}
	for ln.isEmpty() {
		if ln, err = readLine(l.input); err != nil {
			return err
		}
	}
	if !ln.isEofOnly() && ln.indent%2 != 0 {
		return newError("indentation of %d spaces is not a multiple of two", ln.indent)
	}

	l.tokens = l.tokens[:0]
	l.index = 0

	if !ln.isEofOnly() {
		switch {
		case ln.indent > l.indent:
			for ; l.indent < ln.indent; l.indent += 2 {
				l.tokens = append(l.tokens, token.Token{Type: token.INDENT})
			}
		case ln.indent < l.indent:
			for ; l.indent > ln.indent; l.indent -= 2 {
				l.tokens = append(l.tokens, token.Token{Type: token.DEDENT})
			}
		}
	}

	// Open indentation is flushed just before EOF so the stream stays
	// balanced even when the source lacks a trailing newline.
	toks := ln.tokens
	if k := len(toks); k > 0 && toks[k-1].Type == token.EOF {
		l.tokens = append(l.tokens, toks[:k-1]...)
		for ; l.indent > 0; l.indent -= 2 {
			l.tokens = append(l.tokens, token.Token{Type: token.DEDENT})
		}
		l.tokens = append(l.tokens, toks[k-1])
	} else {
		l.tokens = append(l.tokens, toks...)
	}
	slog.Debug("lexer line buffered",
		slog.Int("indent", ln.indent),
		slog.Int("tokens", len(l.tokens)))
	return nil
}

// Expect returns the current token if it has type t, else a LexerError.
func (l *Lexer) Expect(t token.TokenType) (token.Token, error) {
	if l.current.Type != t {
		return token.Token{}, newError("expected %s, got %s", token.Token{Type: t}, l.current)
	}
	return l.current, nil
}

// ExpectValue additionally requires payload equality.
func (l *Lexer) ExpectValue(t token.TokenType, literal string) error {
	if l.current.Type != t || l.current.Literal != literal {
		return newError("expected %s, got %s", token.Token{Type: t, Literal: literal}, l.current)
	}
	return nil
}

// ExpectNext advances, then expects.
func (l *Lexer) ExpectNext(t token.TokenType) (token.Token, error) {
	if _, err := l.Next(); err != nil {
		return token.Token{}, err
	}
	return l.Expect(t)
}

// ExpectNextValue advances, then expects type and payload.
func (l *Lexer) ExpectNextValue(t token.TokenType, literal string) error {
	if _, err := l.Next(); err != nil {
		return err
	}
	return l.ExpectValue(t, literal)
}
