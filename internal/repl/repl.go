package repl

import (
	"bytes"
	"strings"

	"mython/internal/interp"
)

const (
	promptMain = ">>> "
	promptCont = "... "
)

// session wraps the persistent interpreter with the line-accumulation
// logic both REPL front ends share: a line ending in ':' opens a block,
// and an open block is submitted by an empty line.
type session struct {
	out     bytes.Buffer
	interp  *interp.Interpreter
	pending []string
}

func newSession() *session {
	s := &session{}
	s.interp = interp.New(&s.out)
	return s
}

func (s *session) continuing() bool {
	return len(s.pending) > 0
}

// feed consumes one input line. When the line completes a submission it is
// executed and feed returns the program output (or error text) with done
// true; otherwise the line is buffered and done is false.
func (s *session) feed(input string) (output string, isErr bool, done bool) {
	opensBlock := strings.HasSuffix(strings.TrimRight(input, " "), ":")

	if s.continuing() {
		if strings.TrimSpace(input) != "" {
			s.pending = append(s.pending, input)
			return "", false, false
		}
		src := strings.Join(s.pending, "\n") + "\n"
		s.pending = nil
		return s.run(src)
	}

	if opensBlock {
		s.pending = []string{input}
		return "", false, false
	}
	if strings.TrimSpace(input) == "" {
		return "", false, true
	}
	return s.run(input + "\n")
}

func (s *session) run(src string) (string, bool, bool) {
	s.out.Reset()
	if err := s.interp.RunSource(src); err != nil {
		return err.Error(), true, true
	}
	return strings.TrimRight(s.out.String(), "\n"), false, true
}
