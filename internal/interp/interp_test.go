package interp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"mython/internal/lexer"
	"mython/internal/runtime"
)

func TestRunEndToEnd(t *testing.T) {
	src := `class Animal:
  def __init__(self, name, sound):
    self.name = name
    self.sound = sound
  def speak(self):
    return self.name + ' says ' + self.sound
  def __str__(self):
    return self.name

class Dog(Animal):
  def fetch(self):
    return 'fetching!'

d = Dog('Rex', 'woof')
print d
print d.speak()
print d.fetch()
if d.name == 'Rex':
  print 'known dog'
`
	expected := "Rex\nRex says woof\nfetching!\nknown dog\n"

	var out bytes.Buffer
	if err := RunString(src, &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := out.String(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestRunSurfacesRuntimeErrors(t *testing.T) {
	var out bytes.Buffer
	err := RunString("print z\n", &out)
	if err == nil {
		t.Fatalf("expected a runtime error")
	}
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *runtime.Error, got %T", err)
	}
	if !strings.Contains(rtErr.Message, "z") {
		t.Errorf("error %q does not mention the missing name", rtErr.Message)
	}
}

func TestRunSurfacesLexerErrors(t *testing.T) {
	var out bytes.Buffer
	err := RunString(" x = 1\n", &out)
	if err == nil {
		t.Fatalf("expected a lexer error")
	}
	var lexErr *lexer.LexerError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.LexerError, got %T", err)
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	var out bytes.Buffer
	err := RunString("print 'before'\nprint 1 / 0\nprint 'after'\n", &out)
	if err == nil {
		t.Fatalf("expected a division error")
	}
	if got := out.String(); got != "before\n" {
		t.Fatalf("expected output to stop at the failing statement, got %q", got)
	}
}

func TestInterpreterPersistsState(t *testing.T) {
	var out bytes.Buffer
	i := New(&out)

	if err := i.RunSource("x = 20\n"); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if err := i.RunSource("class Doubler:\n  def apply(self, n):\n    return n * 2\n"); err != nil {
		t.Fatalf("class submission failed: %v", err)
	}
	if err := i.RunSource("d = Doubler()\nprint d.apply(x) + 2\n"); err != nil {
		t.Fatalf("final submission failed: %v", err)
	}

	if got := out.String(); got != "42\n" {
		t.Fatalf("expected %q, got %q", "42\n", got)
	}
}

func TestInterpreterSurvivesErrors(t *testing.T) {
	var out bytes.Buffer
	i := New(&out)

	if err := i.RunSource("x = 1\n"); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if err := i.RunSource("print nope\n"); err == nil {
		t.Fatalf("expected an error for an unknown name")
	}
	if err := i.RunSource("print x\n"); err != nil {
		t.Fatalf("state lost after an error: %v", err)
	}
	if got := out.String(); got != "1\n" {
		t.Fatalf("expected %q, got %q", "1\n", got)
	}
}
