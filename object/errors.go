package object

import (
	"fmt"
	"lox/token"
)

// RuntimeError は評価中に発生するエラーの共通インターフェース。
// 実行時エラーが起きるとプログラムの実行はそこで終わる。
type RuntimeError interface {
	error
	Line() int
}

// NameError は未定義の変数を参照・代入しようとしたときのエラー。
// Line は評価器が変数のトークンから補う（環境は行番号を知らない）。
type NameError struct {
	Name    string
	LineNum int
}

func (e *NameError) Error() string {
	return fmt.Sprintf("[line %d] Error: undefined variable '%s'", e.LineNum, e.Name)
}

func (e *NameError) Line() int { return e.LineNum }

// TypeError は演算子に不正な型のオペランドが渡されたときのエラー。
type TypeError struct {
	Operator token.Token
	Message  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Operator.Line, e.Operator.Lexeme, e.Message)
}

func (e *TypeError) Line() int { return e.Operator.Line }
