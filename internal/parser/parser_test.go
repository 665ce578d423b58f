package parser

import (
	"bytes"
	"strings"
	"testing"

	"mython/internal/lexer"
	"mython/internal/runtime"
)

// runProgram parses src and executes it, returning the program output.
func runProgram(t *testing.T, src string) string {
	t.Helper()
	lx, err := lexer.New(strings.NewReader(src))
	if err != nil {
		t.Fatalf("lexing failed: %v", err)
	}
	program, err := Parse(lx)
	if err != nil {
		t.Fatalf("parsing failed: %v", err)
	}
	var out bytes.Buffer
	if _, err := program.Execute(runtime.Closure{}, runtime.NewSimpleContext(&out)); err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	return out.String()
}

func parseError(t *testing.T, src string) error {
	t.Helper()
	lx, err := lexer.New(strings.NewReader(src))
	if err != nil {
		return err
	}
	_, err = Parse(lx)
	if err == nil {
		t.Fatalf("expected a parse error for %q", src)
	}
	return err
}

func TestArithmeticPrecedence(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"print 2 + 3 * 4\n", "14\n"},
		{"print (2 + 3) * 4\n", "20\n"},
		{"print 10 - 2 - 3\n", "5\n"},
		{"print 20 / 2 / 5\n", "2\n"},
		{"print -4\n", "-4\n"},
		{"print -2 + 5\n", "3\n"},
		{"print 1 + 2 * 3 - 4 / 2\n", "5\n"},
	}

	for i, tt := range tests {
		if got := runProgram(t, tt.src); got != tt.expected {
			t.Errorf("tests[%d] %q - expected %q, got %q", i, tt.src, tt.expected, got)
		}
	}
}

func TestLogicalExpressions(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"print not False and True\n", "True\n"},
		{"print True or False and False\n", "True\n"},
		{"print 1 < 2\n", "True\n"},
		{"print 2 <= 1\n", "False\n"},
		{"print 'a' != 'b'\n", "True\n"},
		{"print not 1 == 1\n", "False\n"},
	}

	for i, tt := range tests {
		if got := runProgram(t, tt.src); got != tt.expected {
			t.Errorf("tests[%d] %q - expected %q, got %q", i, tt.src, tt.expected, got)
		}
	}
}

func TestAssignmentAndPrint(t *testing.T) {
	src := "x = 4\ny = 5\nprint x, y, x + y\n"
	if got := runProgram(t, src); got != "4 5 9\n" {
		t.Fatalf("expected %q, got %q", "4 5 9\n", got)
	}
}

func TestPrintNoArguments(t *testing.T) {
	if got := runProgram(t, "print\n"); got != "\n" {
		t.Fatalf("expected a bare newline, got %q", got)
	}
}

func TestStringifyCall(t *testing.T) {
	src := "print str(-4) + '!'\n"
	if got := runProgram(t, src); got != "-4!\n" {
		t.Fatalf("expected %q, got %q", "-4!\n", got)
	}
}

func TestIfElseStatement(t *testing.T) {
	src := `x = 5
if x > 3:
  print 'big'
else:
  print 'small'
`
	if got := runProgram(t, src); got != "big\n" {
		t.Fatalf("expected %q, got %q", "big\n", got)
	}
}

func TestNestedIf(t *testing.T) {
	src := `x = 5
if x > 0:
  if x > 10:
    print 'huge'
  else:
    print 'medium'
`
	if got := runProgram(t, src); got != "medium\n" {
		t.Fatalf("expected %q, got %q", "medium\n", got)
	}
}

func TestClassWithInitAndMethods(t *testing.T) {
	src := `class Counter:
  def __init__(self):
    self.count = 0
  def inc(self):
    self.count = self.count + 1

c = Counter()
c.inc()
c.inc()
print c.count
`
	if got := runProgram(t, src); got != "2\n" {
		t.Fatalf("expected %q, got %q", "2\n", got)
	}
}

func TestInheritance(t *testing.T) {
	src := `class Shape:
  def __init__(self, w):
    self.w = w
  def area(self):
    return self.w * self.w

class Square(Shape):
  def name(self):
    return 'square'

s = Square(4)
print s.area(), s.name()
`
	if got := runProgram(t, src); got != "16 square\n" {
		t.Fatalf("expected %q, got %q", "16 square\n", got)
	}
}

func TestStrDunder(t *testing.T) {
	src := `class Greeting:
  def __str__(self):
    return 'hello world'

g = Greeting()
print g
`
	if got := runProgram(t, src); got != "hello world\n" {
		t.Fatalf("expected %q, got %q", "hello world\n", got)
	}
}

func TestComparisonDunders(t *testing.T) {
	src := `class Num:
  def __init__(self, v):
    self.v = v
  def __eq__(self, other):
    return self.v == other.v
  def __lt__(self, other):
    return self.v < other.v

a = Num(1)
b = Num(2)
print a < b, a == b, a != b, a >= b
`
	if got := runProgram(t, src); got != "True False True False\n" {
		t.Fatalf("expected %q, got %q", "True False True False\n", got)
	}
}

func TestAddDunder(t *testing.T) {
	src := `class Money:
  def __init__(self, cents):
    self.cents = cents
  def __add__(self, other):
    return Money(self.cents + other.cents)
  def __str__(self):
    return str(self.cents) + 'c'

total = Money(25) + Money(50)
print total
`
	if got := runProgram(t, src); got != "75c\n" {
		t.Fatalf("expected %q, got %q", "75c\n", got)
	}
}

func TestClassOnlyProgramIsSilent(t *testing.T) {
	src := `class Quiet:
  def f(self):
    return 1
`
	if got := runProgram(t, src); got != "" {
		t.Fatalf("expected no output, got %q", got)
	}
}

func TestCommentsAndBlankLines(t *testing.T) {
	src := `# a program with noise

x = 1  # bind x

# more noise
print x
`
	if got := runProgram(t, src); got != "1\n" {
		t.Fatalf("expected %q, got %q", "1\n", got)
	}
}

func TestReturnNone(t *testing.T) {
	src := `class A:
  def f(self):
    return None

a = A()
print a.f()
`
	if got := runProgram(t, src); got != "None\n" {
		t.Fatalf("expected %q, got %q", "None\n", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing colon after if", "if x\n  print 1\n"},
		{"unknown parent class", "class B(Missing):\n  def f(self):\n    return 1\n"},
		{"call of unknown name", "x = Widget()\n"},
		{"class without methods", "class Empty:\n  x = 1\n"},
		{"dangling operator", "x = 1 +\n"},
		{"missing closing paren", "print (1 + 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parseError(t, tt.src)
		})
	}
}

func TestClassTablePersistsAcrossParses(t *testing.T) {
	classes := make(map[string]*runtime.Class)
	closure := runtime.Closure{}
	var out bytes.Buffer
	ctx := runtime.NewSimpleContext(&out)

	first := "class A:\n  def f(self):\n    return 41\n"
	lx, err := lexer.New(strings.NewReader(first))
	if err != nil {
		t.Fatalf("lexing failed: %v", err)
	}
	program, err := ParseInto(lx, classes)
	if err != nil {
		t.Fatalf("parsing failed: %v", err)
	}
	if _, err := program.Execute(closure, ctx); err != nil {
		t.Fatalf("execution failed: %v", err)
	}

	second := "a = A()\nprint a.f() + 1\n"
	lx, err = lexer.New(strings.NewReader(second))
	if err != nil {
		t.Fatalf("lexing failed: %v", err)
	}
	program, err = ParseInto(lx, classes)
	if err != nil {
		t.Fatalf("parsing failed: %v", err)
	}
	if _, err := program.Execute(closure, ctx); err != nil {
		t.Fatalf("execution failed: %v", err)
	}

	if got := out.String(); got != "42\n" {
		t.Fatalf("expected %q, got %q", "42\n", got)
	}
}
