// Package parser は Lox言語のパーサーを実装するパッケージ。
// 再帰下降構文解析（recursive descent）で、トークン列をAST（抽象構文木）に変換する。
//
// 文法（下に行くほど優先順位が高い）:
//
//	program     → declaration* EOF ;
//	declaration → varDecl | statement ;
//	varDecl     → "var" IDENTIFIER ( "=" expression )? ";" ;
//	statement   → exprStmt | printStmt | ifStmt | block ;
//	ifStmt      → "if" "(" expression ")" statement ( "else" statement )? ;
//	block       → "{" declaration* "}" ;
//	expression  → assignment ;
//	assignment  → IDENTIFIER "=" assignment | equality ;
//	equality    → comparison ( ( "!=" | "==" ) comparison )* ;
//	comparison  → term ( ( ">" | ">=" | "<" | "<=" ) term )* ;
//	term        → factor ( ( "-" | "+" ) factor )* ;
//	factor      → unary ( ( "/" | "*" ) unary )* ;
//	unary       → ( "!" | "-" ) unary | primary ;
//	primary     → NUMBER | STRING | "true" | "false" | "nil"
//	            | IDENTIFIER | "(" expression ")" ;
//
// 優先順位は関数呼び出しの入れ子の順序そのもので表現される。
// 二項演算子はすべて左結合、代入だけが右結合になる。
package parser

import (
	"errors"
	"fmt"
	"io"
	"lox/ast"
	"lox/lexer"
	"lox/token"
	"strings"
)

// ParseError はパース中に見つかった構文エラー。
// Token はエラーの原因となったトークン。
type ParseError struct {
	Token    token.Token
	Expected string // 期待していたもの（例: "';' after value"）。無効な代入先では空
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[line %d] Error at %s: %s", e.Token.Line, e.Found(), e.Message)
}

// Line はエラーが起きた行番号を返す。
func (e *ParseError) Line() int { return e.Token.Line }

// Found は実際に見つかったトークンを表示用に返す。入力の終端なら "end"。
func (e *ParseError) Found() string {
	if e.Token.Type == token.EOF {
		return "end"
	}
	return "'" + e.Token.Lexeme + "'"
}

// ErrorList はエラー回復モードで集めた構文エラーの列。
type ErrorList []*ParseError

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap は errors.As で個々の *ParseError を取り出せるようにする。
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, err := range l {
		errs[i] = err
	}
	return errs
}

// IsIncomplete はエラーが入力の途中終了によるものか判定する。
// 閉じられていない文字列や、EOF で期待したトークンが来なかった場合に true。
// REPL はこれを見て続きの行を読み込む。
func IsIncomplete(err error) bool {
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		return lexErr.Unterminated
	}

	var list ErrorList
	if errors.As(err, &list) {
		return len(list) == 1 && list[0].Token.Type == token.EOF
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Token.Type == token.EOF
	}

	return false
}

// Option はパーサーの動作を変更する設定。
type Option func(*Parser)

// WithRecovery はエラー回復（panic mode）を有効にする。
// 構文エラーの後、次の文の境界まで読み飛ばして解析を続け、
// 見つかった全てのエラーを ErrorList として返す。
func WithRecovery() Option {
	return func(p *Parser) { p.recovering = true }
}

// WithTrace は各文法規則の入口と出口を w に出力する。
func WithTrace(w io.Writer) Option {
	return func(p *Parser) { p.tracer = w }
}

// Parser は Lox言語のパーサー。
// トークン列を先頭から読み進め、ASTを構築する。
type Parser struct {
	tokens  []token.Token
	current int // 次に読むトークンの位置

	recovering bool
	errors     ErrorList

	tracer     io.Writer
	traceLevel int
}

// New はトークン列からパーサーを生成する。
// トークン列が EOF で終わっていなければ EOF を補う。
func New(tokens []token.Token, opts ...Option) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.Token{Type: token.EOF, Line: line})
	}

	p := &Parser{tokens: tokens}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseProgram はソースコードを字句解析・構文解析してプログラムを返す。
// 失敗した場合は *lexer.LexError、*ParseError、または ErrorList を返す。
func ParseProgram(source string, opts ...Option) (*ast.Program, error) {
	tokens, err := lexer.Scan(source)
	if err != nil {
		return nil, err
	}
	return New(tokens, opts...).ParseProgram()
}

// =====================
// プログラムと文のパース
// =====================

// ParseProgram はプログラム全体をパースしてASTのルートノードを返す。
// EOF に到達するまで宣言を1つずつパースしてProgramに追加していく。
// 既定では最初のエラーで解析を打ち切る。
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.isAtEnd() {
		stmt, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}

	if len(p.errors) > 0 {
		return nil, p.errors
	}

	return program, nil
}

// parseDeclaration は変数宣言または文をパースする。
// エラー回復モードではここでエラーを記録し、次の文の境界まで読み飛ばす。
func (p *Parser) parseDeclaration() (ast.Statement, error) {
	defer p.untrace(p.trace("declaration"))

	var (
		stmt ast.Statement
		err  error
	)
	if p.match(token.VAR) {
		stmt, err = p.parseVarDeclaration()
	} else {
		stmt, err = p.parseStatement()
	}

	if err != nil && p.recovering {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			p.errors = append(p.errors, parseErr)
		}
		p.synchronize()
		return nil, nil
	}

	return stmt, err
}

// parseVarDeclaration は `var <identifier> ( = <expression> )? ;` をパースする。
// 'var' は読み済み。
func (p *Parser) parseVarDeclaration() (ast.Statement, error) {
	defer p.untrace(p.trace("varDecl"))

	stmt := &ast.VarStatement{Token: p.previous()}

	name, err := p.consume(token.IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if p.match(token.EQUAL) {
		stmt.Initializer, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.SEMICOLON, "';' after variable declaration"); err != nil {
		return nil, err
	}

	return stmt, nil
}

// parseStatement は現在のトークンに応じて適切な種類の文をパースする。
// if → IfStatement, print → PrintStatement, { → BlockStatement,
// それ以外 → ExpressionStatement
func (p *Parser) parseStatement() (ast.Statement, error) {
	defer p.untrace(p.trace("statement"))

	switch {
	case p.match(token.IF):
		return p.parseIfStatement()
	case p.match(token.PRINT):
		return p.parsePrintStatement()
	case p.match(token.LEFT_BRACE):
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseIfStatement は `if (<condition>) <statement> ( else <statement> )?` をパースする。
// else は直前の else を持たない if に結びつく。内側の if が先に else を
// 読み取るので、再帰下降のままで dangling else が解決される。
func (p *Parser) parseIfStatement() (ast.Statement, error) {
	defer p.untrace(p.trace("ifStmt"))

	stmt := &ast.IfStatement{Token: p.previous()}

	if _, err := p.consume(token.LEFT_PAREN, "'(' after 'if'"); err != nil {
		return nil, err
	}

	var err error
	stmt.Condition, err = p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.RIGHT_PAREN, "')' after if condition"); err != nil {
		return nil, err
	}

	stmt.Consequence, err = p.parseStatement()
	if err != nil {
		return nil, err
	}

	// else節がある場合
	if p.match(token.ELSE) {
		stmt.Alternative, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

// parsePrintStatement は `print <expression>;` をパースする。
func (p *Parser) parsePrintStatement() (ast.Statement, error) {
	defer p.untrace(p.trace("printStmt"))

	stmt := &ast.PrintStatement{Token: p.previous()}

	var err error
	stmt.Expression, err = p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.SEMICOLON, "';' after value"); err != nil {
		return nil, err
	}

	return stmt, nil
}

// parseBlockStatement は `{ ... }` 内の宣言と文をパースする。
// '}' または EOF に到達するまでパースし続け、最後に '}' を要求する。
func (p *Parser) parseBlockStatement() (ast.Statement, error) {
	defer p.untrace(p.trace("block"))

	block := &ast.BlockStatement{Token: p.previous()}
	block.Statements = []ast.Statement{}

	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		stmt, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}

	if _, err := p.consume(token.RIGHT_BRACE, "'}' after block"); err != nil {
		return nil, err
	}

	return block, nil
}

// parseExpressionStatement は式だけからなる文 `<expression>;` をパースする。
// Lox言語ではセミコロンは省略できない。
func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	defer p.untrace(p.trace("exprStmt"))

	stmt := &ast.ExpressionStatement{Token: p.peek()}

	var err error
	stmt.Expression, err = p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.SEMICOLON, "';' after expression"); err != nil {
		return nil, err
	}

	return stmt, nil
}

// =====================
// 式のパース
// =====================

func (p *Parser) parseExpression() (ast.Expression, error) {
	defer p.untrace(p.trace("expression"))

	return p.parseAssignment()
}

// parseAssignment は代入式をパースする。
// まず左辺を通常の式としてパースし、'=' が続いた場合にだけ
// 左辺が変数かどうかを確かめる。右辺は再帰的に assignment を呼ぶので右結合になる。
func (p *Parser) parseAssignment() (ast.Expression, error) {
	defer p.untrace(p.trace("assignment"))

	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	if p.match(token.EQUAL) {
		equals := p.previous()

		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}

		if variable, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: variable.Name, Value: value}, nil
		}

		return nil, &ParseError{Token: equals, Message: "invalid assignment target"}
	}

	return expr, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	defer p.untrace(p.trace("equality"))

	return p.parseLeftAssociative(p.parseComparison, token.BANG_EQUAL, token.EQUAL_EQUAL)
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	defer p.untrace(p.trace("comparison"))

	return p.parseLeftAssociative(p.parseTerm,
		token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL)
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	defer p.untrace(p.trace("term"))

	return p.parseLeftAssociative(p.parseFactor, token.MINUS, token.PLUS)
}

func (p *Parser) parseFactor() (ast.Expression, error) {
	defer p.untrace(p.trace("factor"))

	return p.parseLeftAssociative(p.parseUnary, token.SLASH, token.STAR)
}

// parseLeftAssociative は同じ優先順位の二項演算子をループで読み取り、
// 左に深い Binary ノードへ畳み込む。
// 例: `1 - 2 - 3` → ((1 - 2) - 3)
func (p *Parser) parseLeftAssociative(
	operand func() (ast.Expression, error),
	operators ...token.TokenType,
) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}

	for p.match(operators...) {
		operator := p.previous()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		expr = &ast.Binary{
			Token:    operator,
			Left:     expr,
			Operator: operator.Lexeme,
			Right:    right,
		}
	}

	return expr, nil
}

// parseUnary は前置演算子式（!x, -5 など）をパースする。
// 演算子が続く限り自分自身を再帰的に呼ぶ（例: !!true, --5）。
func (p *Parser) parseUnary() (ast.Expression, error) {
	defer p.untrace(p.trace("unary"))

	if p.match(token.BANG, token.MINUS) {
		operator := p.previous()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.Unary{Token: operator, Operator: operator.Lexeme, Right: right}, nil
	}

	return p.parsePrimary()
}

// parsePrimary はリテラル、変数、括弧で囲まれた式をパースする。
func (p *Parser) parsePrimary() (ast.Expression, error) {
	defer p.untrace(p.trace("primary"))

	switch {
	case p.match(token.FALSE):
		return &ast.Literal{Token: p.previous(), Value: false}, nil
	case p.match(token.TRUE):
		return &ast.Literal{Token: p.previous(), Value: true}, nil
	case p.match(token.NIL):
		return &ast.Literal{Token: p.previous(), Value: nil}, nil
	case p.match(token.NUMBER, token.STRING):
		return &ast.Literal{Token: p.previous(), Value: p.previous().Literal}, nil
	case p.match(token.IDENTIFIER):
		return &ast.Variable{Name: p.previous()}, nil
	case p.match(token.LEFT_PAREN):
		group := &ast.Grouping{Token: p.previous()}

		var err error
		group.Expression, err = p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.consume(token.RIGHT_PAREN, "')' after expression"); err != nil {
			return nil, err
		}

		return group, nil
	}

	return nil, p.errorAtPeek("expression")
}

// =====================
// トークン操作
// =====================

// match は次のトークンがいずれかの型であれば読み進めて true を返す。
func (p *Parser) match(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume は次のトークンが期待する型であれば読み進めて返す。
// 期待と違う場合は ParseError を返す。
func (p *Parser) consume(t token.TokenType, expected string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAtPeek(expected)
}

func (p *Parser) errorAtPeek(expected string) *ParseError {
	return &ParseError{
		Token:    p.peek(),
		Expected: expected,
		Message:  "expected " + expected,
	}
}

// check は次のトークンが指定された型か判定する。
func (p *Parser) check(t token.TokenType) bool {
	return p.peek().Type == t
}

// advance は次のトークンに進み、読んだトークンを返す。EOF では進まない。
func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

// synchronize はエラーの後、次の文の境界まで読み飛ばす。
// ';' の直後、または文を始めるキーワードの直前で止まる。
func (p *Parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}

		switch p.peek().Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.LEFT_BRACE:
			return
		}

		p.advance()
	}
}
