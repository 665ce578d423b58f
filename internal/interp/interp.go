package interp

import (
	"io"
	"strings"

	"mython/internal/lexer"
	"mython/internal/parser"
	"mython/internal/runtime"
)

// Run lexes, parses, and executes a whole program against a fresh global
// closure, writing program output to out.
func Run(src io.Reader, out io.Writer) error {
	lx, err := lexer.New(src)
	if err != nil {
		return err
	}
	program, err := parser.Parse(lx)
	if err != nil {
		return err
	}
	_, err = program.Execute(runtime.Closure{}, runtime.NewSimpleContext(out))
	return err
}

// RunString is Run over in-memory source.
func RunString(src string, out io.Writer) error {
	return Run(strings.NewReader(src), out)
}

// Interpreter keeps a global closure and a class table alive across runs;
// the REPL feeds it one submission at a time.
type Interpreter struct {
	globals runtime.Closure
	classes map[string]*runtime.Class
	ctx     runtime.Context
}

func New(out io.Writer) *Interpreter {
	return &Interpreter{
		globals: runtime.Closure{},
		classes: make(map[string]*runtime.Class),
		ctx:     runtime.NewSimpleContext(out),
	}
}

// RunSource executes src against the persistent global closure. Bindings
// and class definitions survive into later calls.
func (i *Interpreter) RunSource(src string) error {
	lx, err := lexer.New(strings.NewReader(src))
	if err != nil {
		return err
	}
	program, err := parser.ParseInto(lx, i.classes)
	if err != nil {
		return err
	}
	_, err = program.Execute(i.globals, i.ctx)
	return err
}
