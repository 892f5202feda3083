// Package object は Lox言語のランタイムオブジェクトシステムを定義するパッケージ。
// 評価器（Evaluator）が式を評価した結果はすべてこのパッケージの Object として表現される。
// 値の種類は Number, String, Boolean, Nil の4つで閉じている。
package object

import (
	"fmt"
	"math"
	"strconv"
)

// ObjectType はオブジェクトの種類を識別する文字列型。
type ObjectType string

// オブジェクトの種類を表す定数。
const (
	NIL_OBJ = "NIL" // nil値

	NUMBER_OBJ  = "NUMBER"  // 倍精度浮動小数点数
	STRING_OBJ  = "STRING"  // 文字列
	BOOLEAN_OBJ = "BOOLEAN" // 真偽値
)

// Object はLox言語の全ての値が実装するインターフェース。
// Type() はオブジェクトの種類を返し、Inspect() は print で出力される文字列表現を返す。
type Object interface {
	Type() ObjectType
	Inspect() string
}

// シングルトンオブジェクト。
// true, false, nil は常に同じオブジェクトを使い回す。
var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Number は数値を表すオブジェクト。Lox言語の数値は全て float64。
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }

// Inspect は整数値なら小数点なしで、それ以外は最短の10進表現で返す。
// 例: 7 → "7", 2.5 → "2.5", 1/0 → "+Inf"
func (n *Number) Inspect() string {
	if math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		return fmt.Sprintf("%v", n.Value)
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// String は文字列を表すオブジェクト。
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Boolean は真偽値を表すオブジェクト。
// 評価器ではシングルトン（TRUE, FALSE）として扱う。
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

// Nil は値が存在しないことを表すオブジェクト。
// 評価器ではシングルトン（NIL）として扱う。
type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

// =====================
// 値の変換と比較
// =====================

// NativeBoolToBooleanObject はGoのbool値をシングルトンのBooleanオブジェクトに変換する。
func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// FromLiteral はASTのリテラル値（float64, string, bool, nil）をオブジェクトに変換する。
func FromLiteral(value any) (Object, error) {
	switch v := value.(type) {
	case nil:
		return NIL, nil
	case float64:
		return &Number{Value: v}, nil
	case string:
		return &String{Value: v}, nil
	case bool:
		return NativeBoolToBooleanObject(v), nil
	default:
		return nil, fmt.Errorf("unsupported literal value %#v (%T)", value, value)
	}
}

// IsTruthy はオブジェクトが「真」とみなされるか判定する。
// Lox言語では: nil → false, false → false, それ以外 → true
// 0 や空文字列も真になる。
func IsTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case nil, *Nil:
		return false
	case *Boolean:
		return obj.Value
	default:
		return true
	}
}

// Equal は2つの値が等しいか判定する。
// 型が異なれば常に等しくない。同じ型なら値で比較する（nil 同士は等しい）。
// 数値の比較は IEEE 754 に従うので NaN は自分自身とも等しくない。
func Equal(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a := a.(type) {
	case *Number:
		return a.Value == b.(*Number).Value
	case *String:
		return a.Value == b.(*String).Value
	case *Boolean:
		return a.Value == b.(*Boolean).Value
	case *Nil:
		return true
	default:
		return false
	}
}
