// Package token は Lox言語のトークン（字句）を定義するパッケージ。
// レキサーがソースコードを分割した最小単位がトークンであり、
// パーサーはこのトークン列を入力として構文解析を行う。
package token

import "fmt"

// TokenType はトークンの種類を文字列で表す型。
type TokenType string

const (
	EOF = "EOF" // 入力の終端

	// 識別子 + リテラル
	IDENTIFIER = "IDENTIFIER" // add, foobar, x, y, ...
	NUMBER     = "NUMBER"     // 1343456, 3.14
	STRING     = "STRING"     // "foobar"

	// 1文字のトークン
	LEFT_PAREN  = "("
	RIGHT_PAREN = ")"
	LEFT_BRACE  = "{"
	RIGHT_BRACE = "}"
	COMMA       = ","
	DOT         = "."
	MINUS       = "-"
	PLUS        = "+"
	SEMICOLON   = ";"
	SLASH       = "/"
	STAR        = "*"

	// 1文字または2文字の演算子
	BANG          = "!"
	BANG_EQUAL    = "!="
	EQUAL         = "="
	EQUAL_EQUAL   = "=="
	GREATER       = ">"
	GREATER_EQUAL = ">="
	LESS          = "<"
	LESS_EQUAL    = "<="

	// キーワード
	AND    = "AND"
	CLASS  = "CLASS"
	ELSE   = "ELSE"
	FALSE  = "FALSE"
	FOR    = "FOR"
	FUN    = "FUN"
	IF     = "IF"
	NIL    = "NIL"
	OR     = "OR"
	PRINT  = "PRINT"
	RETURN = "RETURN"
	SUPER  = "SUPER"
	THIS   = "THIS"
	TRUE   = "TRUE"
	VAR    = "VAR"
	WHILE  = "WHILE"
)

// Token はトークンの種類、ソース上の字句、リテラル値、行番号の組。
// Literal は NUMBER なら float64、STRING なら string、それ以外は nil。
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

// String はデバッグ表示用に `TYPE lexeme literal` の形式で返す。
func (t Token) String() string {
	if t.Literal == nil {
		return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
	}
	return fmt.Sprintf("%s %s %v", t.Type, t.Lexeme, t.Literal)
}

// keywords は Lox言語の予約語マップ。
var keywords = map[string]TokenType{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdent は識別子が予約語かどうかを判定する。
// 予約語であればそのトークン型を、そうでなければIDENTIFIERを返す。
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENTIFIER
}
