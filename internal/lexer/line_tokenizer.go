package lexer

import (
	"bufio"
	"io"

	"mython/internal/token"
)

// line holds one source line worth of tokens plus its indentation, counted
// in leading spaces. The indent of blank and comment-only lines is ignored
// by the caller.
type line struct {
	indent int
	tokens []token.Token
}

// isEmpty reports a line that produced no substantive tokens: blank or
// comment-only. Such lines are dropped wholesale, including their NEWLINE.
func (l *line) isEmpty() bool {
	for _, t := range l.tokens {
		if t.Type != token.NEWLINE {
			return false
		}
	}
	return true
}

// isEofOnly reports the synthetic final line carrying nothing but EOF.
func (l *line) isEofOnly() bool {
	for _, t := range l.tokens {
		if t.Type != token.EOF {
			return false
		}
	}
	return true
}

// readLine scans one source line into tokens. At end of input it terminates
// the line with a NEWLINE (when the line has substantive tokens and the
// source lacked a trailing newline) followed by EOF.
func readLine(input *bufio.Reader) (*line, error) {
	ln := &line{}

	indent, err := skipSpaces(input)
	if err != nil {
		return nil, err
	}
	ln.indent = indent

	for {
		b, ok, err := peekByte(input)
		if err != nil {
			return nil, err
		}
		if !ok {
			if n := len(ln.tokens); n > 0 && ln.tokens[n-1].Type != token.NEWLINE {
				ln.tokens = append(ln.tokens, token.Token{Type: token.NEWLINE})
			}
			ln.tokens = append(ln.tokens, token.Token{Type: token.EOF})
			return ln, nil
		}

		switch {
		case b == ' ':
			if _, err := skipSpaces(input); err != nil {
				return nil, err
			}
		case b == '#':
			if err := skipComment(input); err != nil {
				return nil, err
			}
		case b == '\n':
			_, _ = input.ReadByte()
			ln.tokens = append(ln.tokens, token.Token{Type: token.NEWLINE})
			return ln, nil
		case b == '"' || b == '\'':
			tok, err := readString(input)
			if err != nil {
				return nil, err
			}
			ln.tokens = append(ln.tokens, tok)
		case isDigit(b):
			tok, err := readNumber(input)
			if err != nil {
				return nil, err
			}
			ln.tokens = append(ln.tokens, tok)
		case isLetter(b):
			tok, err := readNameOrKeyword(input)
			if err != nil {
				return nil, err
			}
			ln.tokens = append(ln.tokens, tok)
		default:
			tok, err := readOperatorOrChar(input)
			if err != nil {
				return nil, err
			}
			ln.tokens = append(ln.tokens, tok)
		}
	}
}

// peekByte looks at the next byte without consuming it; ok is false at end
// of input.
func peekByte(input *bufio.Reader) (byte, bool, error) {
	buf, err := input.Peek(1)
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return buf[0], true, nil
}

func skipSpaces(input *bufio.Reader) (int, error) {
	count := 0
	for {
		b, ok, err := peekByte(input)
		if err != nil {
			return 0, err
		}
		if !ok || b != ' ' {
			return count, nil
		}
		_, _ = input.ReadByte()
		count++
	}
}

// skipComment consumes up to, but not including, the terminating newline.
func skipComment(input *bufio.Reader) error {
	for {
		b, ok, err := peekByte(input)
		if err != nil {
			return err
		}
		if !ok || b == '\n' {
			return nil
		}
		_, _ = input.ReadByte()
	}
}

func readString(input *bufio.Reader) (token.Token, error) {
	quote, _ := input.ReadByte()
	var value []byte
	for {
		b, err := input.ReadByte()
		if err == io.EOF {
			return token.Token{}, newError("unterminated string literal")
		}
		if err != nil {
			return token.Token{}, err
		}
		switch {
		case b == quote:
			return token.Token{Type: token.STRING, Literal: string(value)}, nil
		case b == '\\':
			escaped, err := input.ReadByte()
			if err == io.EOF {
				return token.Token{}, newError("unterminated string literal")
			}
			if err != nil {
				return token.Token{}, err
			}
			switch escaped {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			case 'r':
				value = append(value, '\r')
			case '"':
				value = append(value, '"')
			case '\'':
				value = append(value, '\'')
			case '\\':
				value = append(value, '\\')
			default:
				return token.Token{}, newError("unrecognized escape sequence \\%c", escaped)
			}
		case b == '\n' || b == '\r':
			return token.Token{}, newError("unexpected end of line in string literal")
		default:
			value = append(value, b)
		}
	}
}

func readNumber(input *bufio.Reader) (token.Token, error) {
	var lexeme []byte
	for {
		b, ok, err := peekByte(input)
		if err != nil {
			return token.Token{}, err
		}
		if !ok || !isDigit(b) {
			return token.Token{Type: token.NUMBER, Literal: string(lexeme)}, nil
		}
		_, _ = input.ReadByte()
		lexeme = append(lexeme, b)
	}
}

func readNameOrKeyword(input *bufio.Reader) (token.Token, error) {
	var lexeme []byte
	for {
		b, ok, err := peekByte(input)
		if err != nil {
			return token.Token{}, err
		}
		if !ok || !(isLetter(b) || isDigit(b)) {
			name := string(lexeme)
			tok := token.Token{Type: token.LookupIdent(name)}
			if tok.Type == token.IDENT {
				tok.Literal = name
			}
			return tok, nil
		}
		_, _ = input.ReadByte()
		lexeme = append(lexeme, b)
	}
}

// readOperatorOrChar tries a two-byte operator first and falls back to a
// single CHAR token consuming only the first byte.
func readOperatorOrChar(input *bufio.Reader) (token.Token, error) {
	first, _ := input.ReadByte()
	second, ok, err := peekByte(input)
	if err != nil {
		return token.Token{}, err
	}
	if ok {
		if t, found := token.LookupOperator(string([]byte{first, second})); found {
			_, _ = input.ReadByte()
			return token.Token{Type: t}, nil
		}
	}
	return token.Token{Type: token.CHAR, Literal: string(first)}, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
