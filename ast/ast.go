// Package ast は Lox言語の抽象構文木（AST）を定義するパッケージ。
// パーサーがトークン列から変換した結果がこのASTになる。
// ASTの各ノードは Node インターフェースを実装し、
// 文（Statement）と式（Expression）の2種類に大別される。
//
// 式と文の種類はこのパッケージで閉じている。マーカーメソッドが
// 非公開なので、他のパッケージから新しいノード型を追加することはできない。
package ast

import (
	"bytes"
	"fmt"
	"lox/token"
	"strconv"
)

// Node はASTの全ノードが実装する基本インターフェース。
// TokenLiteral() はデバッグ用にトークンの字句を返す。
// String() はノードを人間が読める文字列に変換する。
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement は「文」を表すノードのインターフェース。
// statementNode() はマーカーメソッドで、式と文を型レベルで区別するために使う。
type Statement interface {
	Node
	statementNode()
}

// Expression は「式」を表すノードのインターフェース。
// expressionNode() はマーカーメソッドで、式と文を型レベルで区別するために使う。
type Expression interface {
	Node
	expressionNode()
}

// Program はASTのルートノード。
// Lox言語のプログラムは宣言と文（Statement）の列で構成される。
type Program struct {
	Statements []Statement
}

// TokenLiteral は最初の文のトークンの字句を返す。
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

// String はプログラム全体を文字列に変換する。
// 各文のString()を連結して返す。
func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// =====================
// 文（Statements）
// =====================

// ExpressionStatement は式だけからなる文 `<expression>;` を表す。
type ExpressionStatement struct {
	Token      token.Token // その式の最初のトークン
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }

// String は内部の式に ';' を付けて返す。
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ";"
}

// PrintStatement は `print <expression>;` を表す。
type PrintStatement struct {
	Token      token.Token // 'print' トークン
	Expression Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }

func (ps *PrintStatement) String() string {
	var out bytes.Buffer

	out.WriteString("print ")
	if ps.Expression != nil {
		out.WriteString(ps.Expression.String())
	}
	out.WriteString(";")

	return out.String()
}

// VarStatement は `var <name> = <initializer>;` という変数宣言を表す。
// Initializer は省略可能で、省略時は nil。
type VarStatement struct {
	Token       token.Token // 'var' トークン
	Name        token.Token // token.IDENTIFIER トークン
	Initializer Expression
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }

// String は `var <name> = <initializer>;` または `var <name>;` の形式で返す。
func (vs *VarStatement) String() string {
	var out bytes.Buffer

	out.WriteString("var ")
	out.WriteString(vs.Name.Lexeme)

	if vs.Initializer != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Initializer.String())
	}

	out.WriteString(";")

	return out.String()
}

// BlockStatement は `{ ... }` で囲まれたブロック（宣言と文の列）を表す。
// 評価時には新しいスコープが作られる。
type BlockStatement struct {
	Token      token.Token // '{' トークン
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }

// String はブロック内の全文を `{` と `}` で囲んで返す。
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
	}
	out.WriteString("}")

	return out.String()
}

// IfStatement は `if (<condition>) <consequence> else <alternative>` を表す。
// Consequence と Alternative はブロックに限らず任意の文で、
// Alternative は省略可能（nil）。
type IfStatement struct {
	Token       token.Token // 'if' トークン
	Condition   Expression
	Consequence Statement
	Alternative Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }

// String は if文を人間が読める形式に変換する。
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Consequence.String())

	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}

	return out.String()
}

// =====================
// 式（Expressions）
// =====================

// Literal は数値・文字列・真偽値・nil のリテラルを表す。
// Value は float64, string, bool, nil のいずれか。
type Literal struct {
	Token token.Token
	Value any
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Lexeme }

// String はソース上の字句を返す。
// トークンを持たない（手で組み立てた）ノードでは値から組み立てる。
func (l *Literal) String() string {
	if l.Token.Lexeme != "" {
		return l.Token.Lexeme
	}

	switch v := l.Value.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Grouping は括弧で囲まれた式 `(<expression>)` を表す。
type Grouping struct {
	Token      token.Token // '(' トークン
	Expression Expression
}

func (g *Grouping) expressionNode()      {}
func (g *Grouping) TokenLiteral() string { return g.Token.Lexeme }
func (g *Grouping) String() string       { return "(" + g.Expression.String() + ")" }

// Unary は前置演算子式（例: !true, -5）を表す。
// Operator は演算子（"!" か "-"）、Right は右辺の式。
type Unary struct {
	Token    token.Token // 前置演算子のトークン（例: !）
	Operator string
	Right    Expression
}

func (u *Unary) expressionNode()      {}
func (u *Unary) TokenLiteral() string { return u.Token.Lexeme }

// String は `(<operator><right>)` の形式で返す（例: "(-5)"）。
func (u *Unary) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(u.Operator)
	out.WriteString(u.Right.String())
	out.WriteString(")")

	return out.String()
}

// Binary は二項演算子式（例: 5 + 10, a == b）を表す。
// Left は左辺、Operator は演算子、Right は右辺。
type Binary struct {
	Token    token.Token // 演算子トークン（例: +）
	Left     Expression
	Operator string
	Right    Expression
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.Token.Lexeme }

// String は `(<left> <operator> <right>)` の形式で返す（例: "(5 + 10)"）。
func (b *Binary) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(b.Left.String())
	out.WriteString(" " + b.Operator + " ")
	out.WriteString(b.Right.String())
	out.WriteString(")")

	return out.String()
}

// Variable は変数の参照を表す。
type Variable struct {
	Name token.Token // token.IDENTIFIER トークン
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Name.Lexeme }
func (v *Variable) String() string       { return v.Name.Lexeme }

// Assign は代入式 `<name> = <value>` を表す。
// 代入は式なので、値を返し、右結合で連鎖できる（a = b = 1）。
type Assign struct {
	Name  token.Token // 代入先の token.IDENTIFIER トークン
	Value Expression
}

func (a *Assign) expressionNode()      {}
func (a *Assign) TokenLiteral() string { return a.Name.Lexeme }

// String は `(<name> = <value>)` の形式で返す。
func (a *Assign) String() string {
	return "(" + a.Name.Lexeme + " = " + a.Value.String() + ")"
}
