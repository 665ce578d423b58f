package parser

import (
	"fmt"
	"strconv"

	"mython/internal/ast"
	"mython/internal/lexer"
	"mython/internal/runtime"
	"mython/internal/token"
)

// Parser builds the AST from the lexer's token stream. Classes are resolved
// at parse time: a NewInstance node references the class object created by
// the ClassDefinition that introduced the name, so every instantiation of a
// class shares one method table.
type Parser struct {
	lx      *lexer.Lexer
	classes map[string]*runtime.Class
}

// Parse consumes the whole token stream and returns the program as a
// top-level compound statement.
func Parse(lx *lexer.Lexer) (*ast.Compound, error) {
	return ParseInto(lx, make(map[string]*runtime.Class))
}

// ParseInto parses using (and extending) an existing class table. A REPL
// passes the same table across submissions so earlier class definitions
// stay instantiable.
func ParseInto(lx *lexer.Lexer, classes map[string]*runtime.Class) (*ast.Compound, error) {
	p := &Parser{lx: lx, classes: classes}
	return p.parseProgram()
}

func (p *Parser) next() error {
	_, err := p.lx.Next()
	return err
}

func (p *Parser) currentIs(t token.TokenType) bool {
	return p.lx.Current().Type == t
}

func (p *Parser) currentIsChar(c byte) bool {
	cur := p.lx.Current()
	return cur.Type == token.CHAR && cur.Literal == string(c)
}

// consume requires the current token to have type t and advances past it.
func (p *Parser) consume(t token.TokenType) error {
	if _, err := p.lx.Expect(t); err != nil {
		return err
	}
	return p.next()
}

// consumeChar requires the current token to be Char{c} and advances past it.
func (p *Parser) consumeChar(c byte) error {
	if err := p.lx.ExpectValue(token.CHAR, string(c)); err != nil {
		return err
	}
	return p.next()
}

func (p *Parser) errorf(format string, a ...any) error {
	return fmt.Errorf("parse error at %s: %s", p.lx.Current(), fmt.Sprintf(format, a...))
}

func (p *Parser) parseProgram() (*ast.Compound, error) {
	program := &ast.Compound{}
	for !p.currentIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.lx.Current().Type {
	case token.CLASS:
		return p.parseClassDefinition()
	case token.IF:
		return p.parseIfElse()
	default:
		stmt, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.NEWLINE); err != nil {
			return nil, err
		}
		return stmt, nil
	}
}

func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	switch p.lx.Current().Type {
	case token.PRINT:
		if err := p.next(); err != nil {
			return nil, err
		}
		var args []ast.Statement
		if !p.currentIs(token.NEWLINE) {
			var err error
			if args, err = p.parseExpressionList(); err != nil {
				return nil, err
			}
		}
		return &ast.Print{Args: args}, nil

	case token.RETURN:
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Return{Statement: value}, nil

	case token.IDENT:
		ids, err := p.parseDottedIDs()
		if err != nil {
			return nil, err
		}
		if p.currentIsChar('=') {
			if err := p.next(); err != nil {
				return nil, err
			}
			rv, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if len(ids) == 1 {
				return &ast.Assignment{Var: ids[0], RV: rv}, nil
			}
			return &ast.FieldAssignment{
				Object:    ast.VariableValue{DottedIDs: ids[:len(ids)-1]},
				FieldName: ids[len(ids)-1],
				RV:        rv,
			}, nil
		}
		if p.currentIsChar('(') {
			return p.parseCallTail(ids)
		}
		return &ast.VariableValue{DottedIDs: ids}, nil

	default:
		return p.parseExpression()
	}
}

// parseClassDefinition parses
//
//	class Name [ ( Parent ) ] :
//	  def method(params) :
//	    ...
//
// and registers the class so later NewInstance sites can reference it.
func (p *Parser) parseClassDefinition() (ast.Statement, error) {
	nameTok, err := p.lx.ExpectNext(token.IDENT)
	if err != nil {
		return nil, err
	}
	name := nameTok.Literal
	if err := p.next(); err != nil {
		return nil, err
	}

	var parent *runtime.Class
	if p.currentIsChar('(') {
		if err := p.next(); err != nil {
			return nil, err
		}
		parentTok, err := p.lx.Expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		parent = p.classes[parentTok.Literal]
		if parent == nil {
			return nil, p.errorf("unknown parent class %s", parentTok.Literal)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.consumeChar(')'); err != nil {
			return nil, err
		}
	}

	if err := p.consumeChar(':'); err != nil {
		return nil, err
	}
	if err := p.consume(token.NEWLINE); err != nil {
		return nil, err
	}
	if err := p.consume(token.INDENT); err != nil {
		return nil, err
	}

	// the class is visible inside its own body, so methods can construct
	// fresh instances of it
	cls := runtime.NewClass(name, nil, parent)
	p.classes[name] = cls

	var methods []runtime.Method
	for p.currentIs(token.DEF) {
		method, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if len(methods) == 0 {
		return nil, p.errorf("class %s has no methods", name)
	}
	if err := p.consume(token.DEDENT); err != nil {
		return nil, err
	}

	cls.DefineMethods(methods)
	return &ast.ClassDefinition{Cls: runtime.Own(cls)}, nil
}

func (p *Parser) parseMethod() (runtime.Method, error) {
	nameTok, err := p.lx.ExpectNext(token.IDENT)
	if err != nil {
		return runtime.Method{}, err
	}
	if err := p.next(); err != nil {
		return runtime.Method{}, err
	}
	if err := p.consumeChar('('); err != nil {
		return runtime.Method{}, err
	}

	var params []string
	for p.currentIs(token.IDENT) {
		params = append(params, p.lx.Current().Literal)
		if err := p.next(); err != nil {
			return runtime.Method{}, err
		}
		if !p.currentIsChar(',') {
			break
		}
		if err := p.next(); err != nil {
			return runtime.Method{}, err
		}
	}

	if err := p.consumeChar(')'); err != nil {
		return runtime.Method{}, err
	}
	// a leading self names the receiver, which Call binds on its own; it is
	// not one of the formals matched against call arguments
	if len(params) > 0 && params[0] == "self" {
		params = params[1:]
	}
	if err := p.consumeChar(':'); err != nil {
		return runtime.Method{}, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return runtime.Method{}, err
	}

	return runtime.Method{
		Name:         nameTok.Literal,
		FormalParams: params,
		Body:         &ast.MethodBody{Body: body},
	}, nil
}

// parseSuite parses an indented statement block: NEWLINE INDENT stmts DEDENT.
func (p *Parser) parseSuite() (ast.Statement, error) {
	if err := p.consume(token.NEWLINE); err != nil {
		return nil, err
	}
	if err := p.consume(token.INDENT); err != nil {
		return nil, err
	}
	suite := &ast.Compound{}
	for !p.currentIs(token.DEDENT) && !p.currentIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		suite.Statements = append(suite.Statements, stmt)
	}
	if err := p.consume(token.DEDENT); err != nil {
		return nil, err
	}
	return suite, nil
}

func (p *Parser) parseIfElse() (ast.Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeChar(':'); err != nil {
		return nil, err
	}
	ifBody, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	var elseBody ast.Statement
	if p.currentIs(token.ELSE) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.consumeChar(':'); err != nil {
			return nil, err
		}
		if elseBody, err = p.parseSuite(); err != nil {
			return nil, err
		}
	}

	return &ast.IfElse{Condition: cond, IfBody: ifBody, ElseBody: elseBody}, nil
}

func (p *Parser) parseDottedIDs() ([]string, error) {
	first, err := p.lx.Expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	ids := []string{first.Literal}
	if err := p.next(); err != nil {
		return nil, err
	}
	for p.currentIsChar('.') {
		id, err := p.lx.ExpectNext(token.IDENT)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id.Literal)
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (p *Parser) parseExpressionList() ([]ast.Statement, error) {
	var list []ast.Statement
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
		if !p.currentIsChar(',') {
			return list, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
}

// parseCallTail finishes a dotted path followed by an argument list. A
// single id naming a known class becomes NewInstance, str(x) becomes
// Stringify, and any other single-id call is a parse error. A dotted path
// is a method call on the path's prefix.
func (p *Parser) parseCallTail(ids []string) (ast.Statement, error) {
	if err := p.next(); err != nil { // consume '('
		return nil, err
	}
	var args []ast.Statement
	if !p.currentIsChar(')') {
		var err error
		if args, err = p.parseExpressionList(); err != nil {
			return nil, err
		}
	}
	if err := p.consumeChar(')'); err != nil {
		return nil, err
	}

	if len(ids) == 1 {
		if ids[0] == "str" && len(args) == 1 {
			return &ast.Stringify{Arg: args[0]}, nil
		}
		cls, ok := p.classes[ids[0]]
		if !ok {
			return nil, p.errorf("call of unknown name %s", ids[0])
		}
		return &ast.NewInstance{Class: cls, Args: args}, nil
	}

	return &ast.MethodCall{
		Object: &ast.VariableValue{DottedIDs: ids[:len(ids)-1]},
		Method: ids[len(ids)-1],
		Args:   args,
	}, nil
}

func (p *Parser) parseExpression() (ast.Statement, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Statement, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.currentIs(token.OR) {
		if err := p.next(); err != nil {
			return nil, err
		}
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Or{Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *Parser) parseAnd() (ast.Statement, error) {
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.currentIs(token.AND) {
		if err := p.next(); err != nil {
			return nil, err
		}
		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		lhs = &ast.And{Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *Parser) parseNot() (ast.Statement, error) {
	if p.currentIs(token.NOT) {
		if err := p.next(); err != nil {
			return nil, err
		}
		arg, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Arg: arg}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Statement, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	var cmp runtime.Comparator
	switch {
	case p.currentIs(token.EQ):
		cmp = runtime.Equal
	case p.currentIs(token.NOT_EQ):
		cmp = runtime.NotEqual
	case p.currentIs(token.LT_EQ):
		cmp = runtime.LessOrEqual
	case p.currentIs(token.GT_EQ):
		cmp = runtime.GreaterOrEqual
	case p.currentIsChar('<'):
		cmp = runtime.Less
	case p.currentIsChar('>'):
		cmp = runtime.Greater
	default:
		return lhs, nil
	}

	if err := p.next(); err != nil {
		return nil, err
	}
	rhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.Comparison{Cmp: cmp, Lhs: lhs, Rhs: rhs}, nil
}

func (p *Parser) parseAdditive() (ast.Statement, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.currentIsChar('+'):
			if err := p.next(); err != nil {
				return nil, err
			}
			rhs, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			lhs = &ast.Add{Lhs: lhs, Rhs: rhs}
		case p.currentIsChar('-'):
			if err := p.next(); err != nil {
				return nil, err
			}
			rhs, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			lhs = &ast.Sub{Lhs: lhs, Rhs: rhs}
		default:
			return lhs, nil
		}
	}
}

func (p *Parser) parseTerm() (ast.Statement, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.currentIsChar('*'):
			if err := p.next(); err != nil {
				return nil, err
			}
			rhs, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			lhs = &ast.Mult{Lhs: lhs, Rhs: rhs}
		case p.currentIsChar('/'):
			if err := p.next(); err != nil {
				return nil, err
			}
			rhs, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			lhs = &ast.Div{Lhs: lhs, Rhs: rhs}
		default:
			return lhs, nil
		}
	}
}

func (p *Parser) parseUnary() (ast.Statement, error) {
	if p.currentIsChar('-') {
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Sub{Lhs: &ast.NumberConst{Value: 0}, Rhs: operand}, nil
	}
	if p.currentIsChar('+') {
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.parseUnary()
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (ast.Statement, error) {
	cur := p.lx.Current()
	switch cur.Type {
	case token.NUMBER:
		n, err := strconv.ParseInt(cur.Literal, 10, 32)
		if err != nil {
			return nil, p.errorf("number out of range")
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.NumberConst{Value: int32(n)}, nil

	case token.STRING:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.StringConst{Value: cur.Literal}, nil

	case token.TRUE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.BoolConst{Value: true}, nil

	case token.FALSE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.BoolConst{Value: false}, nil

	case token.NONE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.NoneConst{}, nil

	case token.IDENT:
		ids, err := p.parseDottedIDs()
		if err != nil {
			return nil, err
		}
		if p.currentIsChar('(') {
			return p.parseCallTail(ids)
		}
		return &ast.VariableValue{DottedIDs: ids}, nil
	}

	if p.currentIsChar('(') {
		if err := p.next(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.consumeChar(')'); err != nil {
			return nil, err
		}
		return expr, nil
	}

	return nil, p.errorf("unexpected token in expression")
}
