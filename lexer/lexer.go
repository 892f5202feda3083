// Package lexer は Lox言語の字句解析器（レキサー）を実装するパッケージ。
// ソースコードの文字列を先頭から1文字ずつ読み進め、
// token.Token の列（必ず EOF で終わる）に変換する。
package lexer

import (
	"fmt"
	"lox/token"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LexError は字句解析中に見つかったエラー。
// 未知の文字、または閉じられていない文字列リテラルで発生する。
type LexError struct {
	Line    int
	Char    rune
	Message string

	// Unterminated は文字列リテラルが閉じられないまま入力が終わったことを示す。
	// REPL はこれを見て続きの行を要求する。
	Unterminated bool
}

func (e *LexError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// Lexer はソースコードを走査するカーソルを持つ。
type Lexer struct {
	input    string
	start    int // 現在のトークンの開始位置
	position int // 次に読む文字の位置
	line     int // 現在の行番号（1始まり）

	tokens []token.Token
}

// New は入力文字列からレキサーを生成する。
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Scan は入力文字列を一度にトークン列へ変換するヘルパー。
func Scan(input string) ([]token.Token, error) {
	return New(input).ScanTokens()
}

// ScanTokens は入力全体を走査してトークン列を返す。
// 最初のエラーで走査を打ち切り、それまでのトークンは返さない。
// 成功した場合、結果の末尾には必ずただ1つの EOF トークンがある。
func (l *Lexer) ScanTokens() ([]token.Token, error) {
	l.start, l.position, l.line = 0, 0, 1
	l.tokens = nil

	for !l.isAtEnd() {
		l.start = l.position
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, token.Token{Type: token.EOF, Line: l.line})
	return l.tokens, nil
}

// scanToken は現在位置から1トークン分を読み取る。
// 空白とコメントはトークンを生成せずに読み飛ばす。
func (l *Lexer) scanToken() error {
	ch := l.readChar()

	switch ch {
	case '(':
		l.addToken(token.LEFT_PAREN, nil)
	case ')':
		l.addToken(token.RIGHT_PAREN, nil)
	case '{':
		l.addToken(token.LEFT_BRACE, nil)
	case '}':
		l.addToken(token.RIGHT_BRACE, nil)
	case ',':
		l.addToken(token.COMMA, nil)
	case '.':
		l.addToken(token.DOT, nil)
	case '-':
		l.addToken(token.MINUS, nil)
	case '+':
		l.addToken(token.PLUS, nil)
	case ';':
		l.addToken(token.SEMICOLON, nil)
	case '*':
		l.addToken(token.STAR, nil)

	// 1文字先読みして2文字の演算子かどうかを決める
	case '!':
		l.addToken(l.either('=', token.BANG_EQUAL, token.BANG), nil)
	case '=':
		l.addToken(l.either('=', token.EQUAL_EQUAL, token.EQUAL), nil)
	case '<':
		l.addToken(l.either('=', token.LESS_EQUAL, token.LESS), nil)
	case '>':
		l.addToken(l.either('=', token.GREATER_EQUAL, token.GREATER), nil)

	case '/':
		if l.match('/') {
			// 行コメントは行末まで読み捨てる（改行そのものは次の走査で数える）
			for l.peekChar() != '\n' && !l.isAtEnd() {
				l.readChar()
			}
		} else {
			l.addToken(token.SLASH, nil)
		}

	case ' ', '\r', '\t':
	case '\n':
		l.line++

	case '"':
		return l.readString()

	default:
		switch {
		case isDigit(ch):
			return l.readNumber()
		case isLetter(ch):
			l.readIdentifier()
		default:
			return l.illegal()
		}
	}

	return nil
}

// readString は文字列リテラルを読み取る。開始の '"' は読み済み。
// 文字列は複数行にまたがってよく、\" \\ \n \t のエスケープを解釈する。
func (l *Lexer) readString() error {
	startLine := l.line
	var out strings.Builder

	for {
		if l.isAtEnd() {
			return &LexError{
				Line:         startLine,
				Char:         '"',
				Message:      "unterminated string",
				Unterminated: true,
			}
		}

		ch := l.readChar()
		switch ch {
		case '"':
			l.tokens = append(l.tokens, token.Token{
				Type:    token.STRING,
				Lexeme:  l.input[l.start:l.position],
				Literal: out.String(),
				Line:    startLine,
			})
			return nil
		case '\n':
			l.line++
			out.WriteByte(ch)
		case '\\':
			if l.isAtEnd() {
				continue
			}
			next := l.readChar()
			switch next {
			case '"', '\\':
				out.WriteByte(next)
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			default:
				// 未知のエスケープはそのまま残す
				if next == '\n' {
					l.line++
				}
				out.WriteByte(ch)
				out.WriteByte(next)
			}
		default:
			out.WriteByte(ch)
		}
	}
}

// readNumber は数値リテラルを読み取り、float64 の値を持つトークンを追加する。
// '.' は直後に数字が続くときだけ数値の一部とみなす。
func (l *Lexer) readNumber() error {
	for isDigit(l.peekChar()) || (l.peekChar() == '.' && isDigit(l.peekNextChar())) {
		l.readChar()
	}

	text := l.input[l.start:l.position]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return &LexError{
			Line:    l.line,
			Char:    rune(text[0]),
			Message: fmt.Sprintf("invalid number literal %q", text),
		}
	}

	l.addToken(token.NUMBER, value)
	return nil
}

// readIdentifier は識別子を読み取り、予約語ならキーワードのトークンにする。
func (l *Lexer) readIdentifier() {
	for isLetter(l.peekChar()) || isDigit(l.peekChar()) {
		l.readChar()
	}

	text := l.input[l.start:l.position]
	l.addToken(token.LookupIdent(text), nil)
}

// illegal は解釈できない文字に対するエラーを返す。
// マルチバイト文字でもエラーメッセージには1文字として表示する。
func (l *Lexer) illegal() error {
	r, _ := utf8.DecodeRuneInString(l.input[l.start:])
	return &LexError{
		Line:    l.line,
		Char:    r,
		Message: fmt.Sprintf("unexpected character %q", r),
	}
}

// =====================
// カーソル操作
// =====================

func (l *Lexer) isAtEnd() bool {
	return l.position >= len(l.input)
}

// readChar は現在の文字を返して位置を1つ進める。
func (l *Lexer) readChar() byte {
	ch := l.input[l.position]
	l.position++
	return ch
}

// peekChar は位置を進めずに次の文字を返す。終端では 0 を返す。
func (l *Lexer) peekChar() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.input[l.position]
}

// peekNextChar は2文字先の文字を返す。
func (l *Lexer) peekNextChar() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

// match は次の文字が expected なら読み進めて true を返す。
func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.input[l.position] != expected {
		return false
	}
	l.position++
	return true
}

// either は次の文字が next なら two を、そうでなければ one を返す。
func (l *Lexer) either(next byte, two, one token.TokenType) token.TokenType {
	if l.match(next) {
		return two
	}
	return one
}

func (l *Lexer) addToken(t token.TokenType, literal any) {
	l.tokens = append(l.tokens, token.Token{
		Type:    t,
		Lexeme:  l.input[l.start:l.position],
		Literal: literal,
		Line:    l.line,
	})
}

// isLetter は識別子に使える文字か判定する。
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
