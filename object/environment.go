// environment.go は変数の環境（スコープ）を管理する。
// Environment は変数名から値へのマッピングを持ち、
// outer フィールドで外側のスコープへのチェーンを形成する。
// ブロックに入るたびに内側の環境が作られ、ブロックを出ると捨てられる。
package object

import "sort"

// NewEnclosedEnvironment は外側の環境を持つ新しい環境を作成する。
// ブロックの実行時に使用し、直前のスコープを outer として設定する。
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// NewEnvironment は新しい空の環境を作成する。
// プログラムのトップレベル環境として使用する。
func NewEnvironment() *Environment {
	s := make(map[string]Object)
	return &Environment{store: s, outer: nil}
}

// Environment は変数のスコープを表す構造体。
// store は現在のスコープの変数を保持し、
// outer は外側のスコープへの参照（なければnil）。
type Environment struct {
	store map[string]Object
	outer *Environment
}

// Outer は外側のスコープを返す。トップレベルでは nil。
func (e *Environment) Outer() *Environment {
	return e.outer
}

// Define は変数を現在のスコープに定義する。
// 同じ名前が既にあれば上書きする。外側のスコープは見ない。
func (e *Environment) Define(name string, val Object) {
	e.store[name] = val
}

// Get は変数名から値を検索する。
// 現在のスコープになければ外側のスコープを順にたどる。
// どこにも定義されていなければ *NameError を返す。
func (e *Environment) Get(name string) (Object, error) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name]; ok {
			return obj, nil
		}
	}
	return nil, &NameError{Name: name}
}

// Assign は既存の変数に値を代入する。
// 内側から外側へたどり、最初に見つかったスコープの束縛だけを書き換えて終わる。
// どこにも定義されていなければ *NameError を返す（新しい変数は作らない）。
func (e *Environment) Assign(name string, val Object) error {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return nil
		}
	}
	return &NameError{Name: name}
}

// Names は現在のスコープに定義された変数名を名前順で返す。
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
