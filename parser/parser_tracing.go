// parser_tracing.go はパーサーのデバッグ用トレーシング機能を提供する。
// WithTrace で出力先を渡したときだけ、各解析関数の入口と出口でログを出力する。
// トレースの深さはパーサーごとに持つので、複数のパーサーが同時に動いても混ざらない。
package parser

import (
	"fmt"
	"strings"
)

const traceIdentPlaceholder string = "\t"

// identLevel は現在のトレースレベルに応じたインデント文字列を返す。
func (p *Parser) identLevel() string {
	return strings.Repeat(traceIdentPlaceholder, p.traceLevel-1)
}

// tracePrint はインデント付きでメッセージを出力する。
func (p *Parser) tracePrint(fs string) {
	fmt.Fprintf(p.tracer, "%s%s\n", p.identLevel(), fs)
}

func (p *Parser) incIdent() { p.traceLevel = p.traceLevel + 1 }
func (p *Parser) decIdent() { p.traceLevel = p.traceLevel - 1 }

// trace は解析関数の入口で呼ぶ。"BEGIN <msg>" を出力してインデントを増やす。
// 使い方: defer p.untrace(p.trace("equality"))
func (p *Parser) trace(msg string) string {
	if p.tracer == nil {
		return msg
	}
	p.incIdent()
	p.tracePrint("BEGIN " + msg)
	return msg
}

// untrace は解析関数の出口で呼ぶ。"END <msg>" を出力してインデントを減らす。
func (p *Parser) untrace(msg string) {
	if p.tracer == nil {
		return
	}
	p.tracePrint("END " + msg)
	p.decIdent()
}
