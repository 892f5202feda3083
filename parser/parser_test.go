package parser

import (
	"bytes"
	"errors"
	"lox/ast"
	"lox/lexer"
	"lox/token"
	"reflect"
	"strings"
	"testing"
)

func TestVarStatements(t *testing.T) {
	tests := []struct {
		input              string
		expectedIdentifier string
		expectedValue      string
	}{
		{"var x = 5;", "x", "5"},
		{"var y = true;", "y", "true"},
		{"var foobar = y;", "foobar", "y"},
		{`var s = "str";`, "s", `"str"`},
		{"var empty;", "empty", ""},
	}

	for _, tt := range tests {
		program := parseOrFatal(t, tt.input)

		if len(program.Statements) != 1 {
			t.Fatalf("program.Statements does not contain 1 statements. got=%d",
				len(program.Statements))
		}

		stmt, ok := program.Statements[0].(*ast.VarStatement)
		if !ok {
			t.Fatalf("program.Statements[0] is not *ast.VarStatement. got=%T",
				program.Statements[0])
		}

		if stmt.Name.Lexeme != tt.expectedIdentifier {
			t.Errorf("stmt.Name.Lexeme not '%s'. got=%s", tt.expectedIdentifier, stmt.Name.Lexeme)
		}

		if tt.expectedValue == "" {
			if stmt.Initializer != nil {
				t.Errorf("stmt.Initializer expected nil. got=%s", stmt.Initializer)
			}
			continue
		}

		if stmt.Initializer == nil || stmt.Initializer.String() != tt.expectedValue {
			t.Errorf("stmt.Initializer wrong. expected=%q, got=%v", tt.expectedValue, stmt.Initializer)
		}
	}
}

func TestLiteralValues(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"5;", 5.0},
		{"2.5;", 2.5},
		{`"hi";`, "hi"},
		{"true;", true},
		{"false;", false},
		{"nil;", nil},
	}

	for _, tt := range tests {
		program := parseOrFatal(t, tt.input)

		stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
		if !ok {
			t.Fatalf("program.Statements[0] is not *ast.ExpressionStatement. got=%T",
				program.Statements[0])
		}

		literal, ok := stmt.Expression.(*ast.Literal)
		if !ok {
			t.Fatalf("exp not *ast.Literal. got=%T", stmt.Expression)
		}

		if literal.Value != tt.expected {
			t.Errorf("literal.Value not %#v. got=%#v", tt.expected, literal.Value)
		}
	}
}

// TestOperatorPrecedenceParsing は演算子の優先順位と結合性を
// String() の括弧付き表現で確認する。
func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-a * b;", "((-a) * b);"},
		{"!-a;", "(!(-a));"},
		{"!!true;", "(!(!true));"},
		{"a + b + c;", "((a + b) + c);"},
		{"a + b - c;", "((a + b) - c);"},
		{"a * b * c;", "((a * b) * c);"},
		{"a * b / c;", "((a * b) / c);"},
		{"a + b / c;", "(a + (b / c));"},
		{"a + b * c + d / e - f;", "(((a + (b * c)) + (d / e)) - f);"},
		{"5 > 4 == 3 < 4;", "((5 > 4) == (3 < 4));"},
		{"5 < 4 != 3 > 4;", "((5 < 4) != (3 > 4));"},
		{"x >= 1 <= 2;", "((x >= 1) <= 2);"},
		{"3 + 4 * 5 == 3 * 1 + 4 * 5;", "((3 + (4 * 5)) == ((3 * 1) + (4 * 5)));"},
		{"3 > 5 == false;", "((3 > 5) == false);"},
		{"1 + (2 + 3) + 4;", "((1 + ((2 + 3))) + 4);"},
		{"(5 + 5) * 2;", "(((5 + 5)) * 2);"},
		{"-(5 + 5);", "(-((5 + 5)));"},
		{"a = b = 1;", "(a = (b = 1));"},
		{"a = 1 + 2 == 3;", "(a = ((1 + 2) == 3));"},
		{`"s" + nil;`, `("s" + nil);`},
		{"print a + b;", "print (a + b);"},
		{"{ var a = 1; { a; } }", "{var a = 1;{a;}}"},
		{"if (a) print 1; else print 2;", "if (a) print 1; else print 2;"},
	}

	for _, tt := range tests {
		program := parseOrFatal(t, tt.input)

		actual := program.String()
		if actual != tt.expected {
			t.Errorf("expected=%q, got=%q", tt.expected, actual)
		}
	}
}

// TestDanglingElse は else が最も近い if に結びつくことを確認する。
func TestDanglingElse(t *testing.T) {
	program := parseOrFatal(t, "if (true) if (false) print 1; else print 2;")

	outer, ok := program.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("program.Statements[0] is not *ast.IfStatement. got=%T", program.Statements[0])
	}
	if outer.Alternative != nil {
		t.Errorf("outer if should not have an else branch. got=%s", outer.Alternative)
	}

	inner, ok := outer.Consequence.(*ast.IfStatement)
	if !ok {
		t.Fatalf("outer.Consequence is not *ast.IfStatement. got=%T", outer.Consequence)
	}
	if inner.Alternative == nil {
		t.Fatalf("inner if should own the else branch")
	}
	if inner.Alternative.String() != "print 2;" {
		t.Errorf("inner.Alternative wrong. got=%q", inner.Alternative.String())
	}
}

func TestBlockStatement(t *testing.T) {
	program := parseOrFatal(t, "{ var a = 1; print a; {} }")

	block, ok := program.Statements[0].(*ast.BlockStatement)
	if !ok {
		t.Fatalf("program.Statements[0] is not *ast.BlockStatement. got=%T", program.Statements[0])
	}
	if len(block.Statements) != 3 {
		t.Fatalf("block.Statements does not contain 3 statements. got=%d", len(block.Statements))
	}
	if _, ok := block.Statements[0].(*ast.VarStatement); !ok {
		t.Errorf("block.Statements[0] is not *ast.VarStatement. got=%T", block.Statements[0])
	}
	if _, ok := block.Statements[1].(*ast.PrintStatement); !ok {
		t.Errorf("block.Statements[1] is not *ast.PrintStatement. got=%T", block.Statements[1])
	}
	if inner, ok := block.Statements[2].(*ast.BlockStatement); !ok || len(inner.Statements) != 0 {
		t.Errorf("block.Statements[2] is not an empty block. got=%s", block.Statements[2])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		line     int
		found    string
		expected string
	}{
		{"print 1", 1, "end", "';' after value"},
		{"var = 1;", 1, "'='", "variable name"},
		{"var a = 1", 1, "end", "';' after variable declaration"},
		{"1 + ;", 1, "';'", "expression"},
		{"if true) print 1;", 1, "'true'", "'(' after 'if'"},
		{"if (true print 1;", 1, "'print'", "')' after if condition"},
		{"{ print 1;", 1, "end", "'}' after block"},
		{"(1 + 2;", 1, "';'", "')' after expression"},
		{"\n\nprint );", 3, "')'", "expression"},
		{"a b;", 1, "'b'", "';' after expression"},
		{"if (a) var b = 1;", 1, "'var'", "expression"},
	}

	for _, tt := range tests {
		_, err := ParseProgram(tt.input)
		if err == nil {
			t.Errorf("ParseProgram(%q) expected error, got none", tt.input)
			continue
		}

		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("ParseProgram(%q) error is not *ParseError. got=%T (%v)", tt.input, err, err)
			continue
		}

		if parseErr.Line() != tt.line {
			t.Errorf("ParseProgram(%q) line wrong. expected=%d, got=%d", tt.input, tt.line, parseErr.Line())
		}
		if parseErr.Found() != tt.found {
			t.Errorf("ParseProgram(%q) found wrong. expected=%s, got=%s", tt.input, tt.found, parseErr.Found())
		}
		if parseErr.Expected != tt.expected {
			t.Errorf("ParseProgram(%q) expected wrong. expected=%q, got=%q",
				tt.input, tt.expected, parseErr.Expected)
		}
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	for _, input := range []string{"a + b = c;", "(a) = 1;", "1 = 2;", "!a = b;"} {
		_, err := ParseProgram(input)

		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("ParseProgram(%q) expected *ParseError. got=%v", input, err)
			continue
		}
		if parseErr.Message != "invalid assignment target" {
			t.Errorf("ParseProgram(%q) message wrong. got=%q", input, parseErr.Message)
		}
		if parseErr.Token.Type != token.EQUAL {
			t.Errorf("ParseProgram(%q) error should point at '='. got=%s", input, parseErr.Found())
		}
	}
}

// TestLexErrorPassesThrough は字句エラーがそのまま返されることを確認する。
func TestLexErrorPassesThrough(t *testing.T) {
	_, err := ParseProgram("var a = @;")

	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.LexError. got=%T (%v)", err, err)
	}
	if lexErr.Char != '@' {
		t.Errorf("lexErr.Char wrong. got=%q", lexErr.Char)
	}
}

func TestFailFast(t *testing.T) {
	_, err := ParseProgram("print ; print ;")

	var list ErrorList
	if errors.As(err, &list) {
		t.Fatalf("default mode should not collect errors. got=%v", list)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError. got=%T", err)
	}
}

func TestRecovery(t *testing.T) {
	program, err := ParseProgram("print ; var x = 1; print 1 2; print x;", WithRecovery())
	if program != nil {
		t.Errorf("program should be nil when errors were reported. got=%s", program)
	}

	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList. got=%T (%v)", err, err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 errors. got=%d (%v)", len(list), list)
	}
	if list[0].Found() != "';'" || list[0].Expected != "expression" {
		t.Errorf("list[0] wrong. got=%v", list[0])
	}
	if list[1].Found() != "'2'" || list[1].Expected != "';' after value" {
		t.Errorf("list[1] wrong. got=%v", list[1])
	}

	var first *ParseError
	if !errors.As(err, &first) || first != list[0] {
		t.Errorf("errors.As should yield the first ParseError")
	}

	if lines := strings.Count(err.Error(), "\n"); lines != 1 {
		t.Errorf("ErrorList.Error() should have one line per error. got=%q", err.Error())
	}
}

func TestRecoveryInsideBlock(t *testing.T) {
	_, err := ParseProgram("{ print ; print 1; } print 2 3;", WithRecovery())

	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList. got=%T (%v)", err, err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 errors. got=%d (%v)", len(list), list)
	}
}

func TestRecoveryWithoutErrors(t *testing.T) {
	program, err := ParseProgram("var a = 1; print a;", WithRecovery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(program.Statements) != 2 {
		t.Errorf("expected 2 statements. got=%d", len(program.Statements))
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		input    string
		opts     []Option
		expected bool
	}{
		{"print 1", nil, true},
		{"{ print 1;", nil, true},
		{"if (a", nil, true},
		{`print "abc`, nil, true},
		{"print 1 2;", nil, false},
		{"print );", nil, false},
		{"@", nil, false},
		{"{ print 1;", []Option{WithRecovery()}, true},
		{"print ; print 1", []Option{WithRecovery()}, false},
	}

	for _, tt := range tests {
		_, err := ParseProgram(tt.input, tt.opts...)
		if err == nil {
			t.Errorf("ParseProgram(%q) expected error", tt.input)
			continue
		}
		if got := IsIncomplete(err); got != tt.expected {
			t.Errorf("IsIncomplete(%q) wrong. expected=%t, got=%t", tt.input, tt.expected, got)
		}
	}

	if IsIncomplete(nil) {
		t.Errorf("IsIncomplete(nil) should be false")
	}
}

// TestDeterminism は同じソースを2回パースすると同じASTになることを確認する。
func TestDeterminism(t *testing.T) {
	input := `var a = 1;
{ var b = a + 2 * 3; if (b >= 7) print "big"; else { b = -b; } }
print !(a == nil);`

	first := parseOrFatal(t, input)
	second := parseOrFatal(t, input)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ASTs differ.\nfirst=%s\nsecond=%s", first, second)
	}
}

func TestNewAppendsEOF(t *testing.T) {
	program, err := New(nil).ParseProgram()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(program.Statements) != 0 {
		t.Errorf("expected no statements. got=%d", len(program.Statements))
	}

	tokens := []token.Token{
		{Type: token.PRINT, Lexeme: "print", Line: 1},
		{Type: token.NUMBER, Lexeme: "1", Literal: 1.0, Line: 1},
	}
	_, err = New(tokens).ParseProgram()

	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Found() != "end" {
		t.Errorf("expected error at end. got=%v", err)
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	if _, err := ParseProgram("1;", WithTrace(&buf)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "BEGIN declaration" {
		t.Errorf("first trace line wrong. got=%q", lines[0])
	}
	if lines[len(lines)-1] != "END declaration" {
		t.Errorf("last trace line wrong. got=%q", lines[len(lines)-1])
	}
	if !strings.Contains(buf.String(), "\t\tBEGIN exprStmt\n") {
		t.Errorf("nested rules should be indented. got=\n%s", buf.String())
	}

	begins := strings.Count(buf.String(), "BEGIN ")
	ends := strings.Count(buf.String(), "END ")
	if begins != ends {
		t.Errorf("unbalanced trace. BEGIN=%d END=%d", begins, ends)
	}
}

func parseOrFatal(t *testing.T, input string) *ast.Program {
	t.Helper()

	program, err := ParseProgram(input)
	if err != nil {
		t.Fatalf("ParseProgram(%q) returned error: %v", input, err)
	}
	return program
}
