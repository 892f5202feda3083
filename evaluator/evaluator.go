// Package evaluator は Lox言語のTree-walking評価器を実装するパッケージ。
// ASTを再帰的にたどりながら（tree-walking）、式を object.Object に評価し、
// 文を実行して print の出力などの副作用を起こす。
//
// 評価器は「現在のスコープ」を1つだけ状態として持つ。ブロックに入るときに
// 内側のスコープへ切り替え、ブロックを出るときにはエラーで抜ける場合も含めて
// 必ず元のスコープに戻す。
package evaluator

import (
	"errors"
	"fmt"
	"io"
	"lox/ast"
	"lox/object"
	"lox/token"
)

// Option は Interpreter の設定。
type Option func(*Interpreter)

// WithEnvironment はトップレベル環境を差し替える。
// REPL のように複数のプログラムで変数を共有したい場合に使う。
func WithEnvironment(env *object.Environment) Option {
	return func(in *Interpreter) { in.env = env }
}

// Interpreter は文の列を実行する評価器。
// インスタンスごとに自分のトップレベル環境を持つので、
// 複数の Interpreter が状態を共有することはない。
type Interpreter struct {
	env *object.Environment // 現在のスコープ
	out io.Writer           // print の出力先
}

// New は print の出力先を受け取り、新しい評価器を生成する。
// out が nil なら出力は捨てられる。
func New(out io.Writer, opts ...Option) *Interpreter {
	in := &Interpreter{env: object.NewEnvironment(), out: out}
	for _, opt := range opts {
		opt(in)
	}
	if in.out == nil {
		in.out = io.Discard
	}
	if in.env == nil {
		in.env = object.NewEnvironment()
	}
	return in
}

// Run はプログラムを実行する。env が nil なら新しいトップレベル環境を使う。
// 最初の実行時エラーで実行を打ち切り、そのエラーを返す。
func Run(program *ast.Program, env *object.Environment, out io.Writer) error {
	return New(out, WithEnvironment(env)).Interpret(program)
}

// Environment は現在のスコープを返す。
func (in *Interpreter) Environment() *object.Environment {
	return in.env
}

// Interpret はプログラムの文を先頭から順に実行する。nil のプログラムは何もしない。
func (in *Interpreter) Interpret(program *ast.Program) error {
	if program == nil {
		return nil
	}
	for _, stmt := range program.Statements {
		if err := in.Execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// =====================
// 文（Statements）の実行
// =====================

// Execute は1つの文を現在のスコープで実行する。
// 文の種類に応じたswitch文で処理を分岐する。
func (in *Interpreter) Execute(stmt ast.Statement) error {
	switch stmt := stmt.(type) {

	// ExpressionStatement: 式を評価して結果を捨てる
	case *ast.ExpressionStatement:
		_, err := in.Evaluate(stmt.Expression)
		return err

	// PrintStatement: 式を評価して文字列表現を出力する
	case *ast.PrintStatement:
		val, err := in.Evaluate(stmt.Expression)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(in.out, val.Inspect())
		return err

	// VarStatement: 初期化式を評価し（なければnil）、現在のスコープに定義する
	case *ast.VarStatement:
		var val object.Object = object.NIL
		if stmt.Initializer != nil {
			var err error
			val, err = in.Evaluate(stmt.Initializer)
			if err != nil {
				return err
			}
		}
		in.env.Define(stmt.Name.Lexeme, val)
		return nil

	// BlockStatement: 新しいスコープを作ってその中で文を実行する
	case *ast.BlockStatement:
		return in.executeBlock(stmt.Statements, object.NewEnclosedEnvironment(in.env))

	// IfStatement: 条件の真偽に応じて一方の枝だけを実行する
	case *ast.IfStatement:
		return in.executeIf(stmt)
	}

	return fmt.Errorf("unknown statement type %T", stmt)
}

// executeBlock は env を現在のスコープにして文を順に実行する。
// 正常終了でもエラーでも、抜けるときに必ず元のスコープへ戻す。
func (in *Interpreter) executeBlock(statements []ast.Statement, env *object.Environment) error {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range statements {
		if err := in.Execute(stmt); err != nil {
			return err
		}
	}

	return nil
}

// executeIf は条件がtruthyならConsequenceを、falsyでAlternativeがあればAlternativeを実行する。
// どちらにも当てはまらなければ何もしない。
func (in *Interpreter) executeIf(stmt *ast.IfStatement) error {
	condition, err := in.Evaluate(stmt.Condition)
	if err != nil {
		return err
	}

	if object.IsTruthy(condition) {
		return in.Execute(stmt.Consequence)
	} else if stmt.Alternative != nil {
		return in.Execute(stmt.Alternative)
	}

	return nil
}

// =====================
// 式（Expressions）の評価
// =====================

// Evaluate は式を現在のスコープで評価して値を返す。
func (in *Interpreter) Evaluate(expr ast.Expression) (object.Object, error) {
	switch node := expr.(type) {

	// Literal: リテラルをそのままオブジェクトに変換
	case *ast.Literal:
		return object.FromLiteral(node.Value)

	// Grouping: 括弧の中身をそのまま評価
	case *ast.Grouping:
		return in.Evaluate(node.Expression)

	// Unary: 前置演算子式を評価する（!, -）
	case *ast.Unary:
		right, err := in.Evaluate(node.Right)
		if err != nil {
			return nil, err
		}
		return evalUnaryExpression(node.Token, right)

	// Binary: 左辺、右辺の順に評価してから演算する
	case *ast.Binary:
		left, err := in.Evaluate(node.Left)
		if err != nil {
			return nil, err
		}

		right, err := in.Evaluate(node.Right)
		if err != nil {
			return nil, err
		}

		return evalBinaryExpression(node.Token, left, right)

	// Variable: 環境から変数の値を取得する
	case *ast.Variable:
		val, err := in.env.Get(node.Name.Lexeme)
		if err != nil {
			return nil, withLine(err, node.Name)
		}
		return val, nil

	// Assign: 右辺を評価して既存の変数に代入し、代入した値を返す
	case *ast.Assign:
		val, err := in.Evaluate(node.Value)
		if err != nil {
			return nil, err
		}
		if err := in.env.Assign(node.Name.Lexeme, val); err != nil {
			return nil, withLine(err, node.Name)
		}
		return val, nil
	}

	return nil, fmt.Errorf("unknown expression type %T", expr)
}

// =====================
// 前置演算子の評価
// =====================

// evalUnaryExpression は前置演算子式を評価する。
// ! は任意の値に使え、- は数値にのみ使える。
func evalUnaryExpression(operator token.Token, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.BANG:
		return object.NativeBoolToBooleanObject(!object.IsTruthy(right)), nil
	case token.MINUS:
		num, ok := right.(*object.Number)
		if !ok {
			return nil, newTypeError(operator, "operand must be a number, got %s", right.Type())
		}
		return &object.Number{Value: -num.Value}, nil
	default:
		return nil, newTypeError(operator, "unknown operator: %s%s", operator.Lexeme, right.Type())
	}
}

// =====================
// 二項演算子の評価
// =====================

// evalBinaryExpression は二項演算子式を評価する。
// == と != は全ての型に使え、+ は数値同士か文字列同士、
// それ以外の演算子は数値同士にのみ使える。
func evalBinaryExpression(
	operator token.Token,
	left, right object.Object,
) (object.Object, error) {
	switch operator.Type {
	case token.EQUAL_EQUAL:
		return object.NativeBoolToBooleanObject(object.Equal(left, right)), nil
	case token.BANG_EQUAL:
		return object.NativeBoolToBooleanObject(!object.Equal(left, right)), nil
	case token.PLUS:
		return evalPlusExpression(operator, left, right)
	}

	leftNum, leftOk := left.(*object.Number)
	rightNum, rightOk := right.(*object.Number)
	if !leftOk || !rightOk {
		return nil, newTypeError(operator, "operands must be numbers, got %s and %s",
			left.Type(), right.Type())
	}

	return evalNumberInfixExpression(operator, leftNum.Value, rightNum.Value)
}

// evalPlusExpression は + を評価する。数値なら加算、文字列なら連結。
func evalPlusExpression(
	operator token.Token,
	left, right object.Object,
) (object.Object, error) {
	switch left := left.(type) {
	case *object.Number:
		if right, ok := right.(*object.Number); ok {
			return &object.Number{Value: left.Value + right.Value}, nil
		}
	case *object.String:
		if right, ok := right.(*object.String); ok {
			return &object.String{Value: left.Value + right.Value}, nil
		}
	}

	return nil, newTypeError(operator, "operands must be two numbers or two strings, got %s and %s",
		left.Type(), right.Type())
}

// evalNumberInfixExpression は数値同士の中置演算を評価する。
// 四則演算（-, *, /）と比較演算（<, <=, >, >=）をサポート。
// 0 での除算は IEEE 754 に従い ±Inf または NaN になる。
func evalNumberInfixExpression(
	operator token.Token,
	leftVal, rightVal float64,
) (object.Object, error) {
	switch operator.Type {
	case token.MINUS:
		return &object.Number{Value: leftVal - rightVal}, nil
	case token.STAR:
		return &object.Number{Value: leftVal * rightVal}, nil
	case token.SLASH:
		return &object.Number{Value: leftVal / rightVal}, nil
	case token.GREATER:
		return object.NativeBoolToBooleanObject(leftVal > rightVal), nil
	case token.GREATER_EQUAL:
		return object.NativeBoolToBooleanObject(leftVal >= rightVal), nil
	case token.LESS:
		return object.NativeBoolToBooleanObject(leftVal < rightVal), nil
	case token.LESS_EQUAL:
		return object.NativeBoolToBooleanObject(leftVal <= rightVal), nil
	default:
		return nil, newTypeError(operator, "unknown operator: %s", operator.Lexeme)
	}
}

// =====================
// ユーティリティ関数
// =====================

// newTypeError は演算子トークンの位置を持つ TypeError を生成するヘルパー関数。
func newTypeError(operator token.Token, format string, a ...interface{}) *object.TypeError {
	return &object.TypeError{Operator: operator, Message: fmt.Sprintf(format, a...)}
}

// withLine は環境から返った NameError に変数トークンの行番号を補う。
func withLine(err error, name token.Token) error {
	var nameErr *object.NameError
	if errors.As(err, &nameErr) {
		nameErr.LineNum = name.Line
	}
	return err
}
