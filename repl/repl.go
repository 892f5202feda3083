// Package repl は Lox言語のREPL（Read-Eval-Print Loop）を実装するパッケージ。
// ユーザーが入力したコードを字句解析 → 構文解析 → 評価し、結果を表示する。
// 端末から起動された場合は liner で行編集と履歴を提供する。
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"lox/ast"
	"lox/config"
	"lox/evaluator"
	"lox/lexer"
	"lox/object"
	"lox/parser"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// Start はREPLを起動する。
// 入力ストリームからコードを読み取り、評価結果を出力ストリームに書き出す。
// 評価器（とその環境）をループ全体で共有することで、変数束縛がセッション中持続する。
func Start(in io.Reader, out io.Writer, cfg config.Config) {
	reader := newLineReader(in, out, cfg)
	defer reader.Close()

	s := &session{
		out:    out,
		cfg:    cfg,
		interp: evaluator.New(out),
	}

	for {
		source, err := readEntry(reader, cfg)
		if errors.Is(err, io.EOF) {
			return
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C は入力中のコードだけを捨てる
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "read error: %v\n", err)
			return
		}

		trimmed := strings.TrimSpace(source)
		if trimmed == "" {
			continue
		}
		reader.AppendHistory(strings.ReplaceAll(source, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := s.command(trimmed); quit {
				return
			}
			continue
		}

		s.eval(source)
	}
}

// readEntry は1つの入力単位を読み取る。
// 入力が途中で終わっている（閉じていないブロックや文字列など）間は
// 継続プロンプトを出して次の行を読み足す。継続中の空行で入力を打ち切る。
func readEntry(reader lineReader, cfg config.Config) (string, error) {
	var b strings.Builder

	for {
		prompt := cfg.Prompt
		if b.Len() > 0 {
			prompt = cfg.ContinuationPrompt
		}

		line, err := reader.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), nil
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if strings.HasPrefix(strings.TrimSpace(b.String()), ":") {
			return b.String(), nil
		}

		if _, err := parser.ParseProgram(b.String()); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return b.String(), nil
	}
}

// session は1回のREPLセッションの状態。
type session struct {
	out    io.Writer
	cfg    config.Config
	interp *evaluator.Interpreter
}

// eval は入力をパースして1文ずつ実行する。
// 式文の場合は値を表示する。エラーは表示してセッションを続ける。
func (s *session) eval(source string) {
	opts := []parser.Option{parser.WithRecovery()}
	if s.cfg.TraceParser {
		opts = append(opts, parser.WithTrace(s.out))
	}

	program, err := parser.ParseProgram(source, opts...)
	if err != nil {
		printParserErrors(s.out, err)
		return
	}

	for _, stmt := range program.Statements {
		if es, ok := stmt.(*ast.ExpressionStatement); ok {
			val, err := s.interp.Evaluate(es.Expression)
			if err != nil {
				printRuntimeError(s.out, err)
				return
			}
			io.WriteString(s.out, val.Inspect())
			io.WriteString(s.out, "\n")
			continue
		}

		if err := s.interp.Execute(stmt); err != nil {
			printRuntimeError(s.out, err)
			return
		}
	}
}

// command は ':' で始まるREPLコマンドを処理する。終了すべきなら true を返す。
func (s *session) command(cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":env":
		env := s.interp.Environment()
		for _, name := range env.Names() {
			val, _ := env.Get(name)
			fmt.Fprintf(s.out, "%s = %s\n", name, inspectQuoted(val))
		}
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :quit to exit.\n", cmd)
	}
	return false
}

// inspectQuoted は文字列だけ引用符付きで表示する。
func inspectQuoted(val object.Object) string {
	if str, ok := val.(*object.String); ok {
		return fmt.Sprintf("%q", str.Value)
	}
	return val.Inspect()
}

// printParserErrors は字句エラーまたは構文エラーを一覧で出力する。
func printParserErrors(out io.Writer, err error) {
	io.WriteString(out, "Woops! We ran into some syntax errors here!\n")
	io.WriteString(out, " parser errors:\n")

	var list parser.ErrorList
	var lexErr *lexer.LexError
	switch {
	case errors.As(err, &list):
		for _, e := range list {
			io.WriteString(out, "\t"+e.Error()+"\n")
		}
	case errors.As(err, &lexErr):
		io.WriteString(out, "\t"+lexErr.Error()+"\n")
	default:
		io.WriteString(out, "\t"+err.Error()+"\n")
	}
}

func printRuntimeError(out io.Writer, err error) {
	io.WriteString(out, "runtime error: "+err.Error()+"\n")
}

// =====================
// 行の読み取り
// =====================

// lineReader はプロンプトを出して1行読む入力元。
// 入力の終わりでは io.EOF を返す。
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// newLineReader は端末なら liner を、それ以外（パイプやテスト）なら bufio を使う。
func newLineReader(in io.Reader, out io.Writer, cfg config.Config) lineReader {
	if in == io.Reader(os.Stdin) && out == io.Writer(os.Stdout) && liner.TerminalSupported() {
		return newTerminalReader(cfg.HistoryFile, out)
	}
	return &scannerReader{scanner: bufio.NewScanner(in), out: out}
}

// scannerReader は bufio.Scanner で1行ずつ読む。
type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scannerReader) Prompt(prompt string) (string, error) {
	io.WriteString(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scannerReader) AppendHistory(string) {}
func (r *scannerReader) Close() error         { return nil }

// terminalReader は liner による行編集付きの入力。
// 履歴ファイルは起動時に読み込み、終了時に書き戻す。
type terminalReader struct {
	*liner.State
	historyFile string
	out         io.Writer // 履歴の読み書きに失敗したときの警告の出力先
}

func newTerminalReader(historyFile string, out io.Writer) *terminalReader {
	r := &terminalReader{State: liner.NewLiner(), historyFile: historyFile, out: out}
	r.SetCtrlCAborts(true)
	if historyFile != "" {
		loadHistory(r.State, historyFile, out)
	}
	return r
}

func (r *terminalReader) Close() error {
	if r.historyFile != "" {
		saveHistory(r.State, r.historyFile, r.out)
	}
	return r.State.Close()
}

// historyStore は履歴を読み書きできるもの（*liner.State）。
type historyStore interface {
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
}

// loadHistory は履歴ファイルを読み込む。ファイルがまだなければ何もしない。
// それ以外の失敗は警告を出してセッションを続ける。
func loadHistory(h historyStore, path string, out io.Writer) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		fmt.Fprintf(out, "warning: could not open history: %v\n", err)
		return
	}
	defer f.Close()

	if _, err := h.ReadHistory(f); err != nil {
		fmt.Fprintf(out, "warning: could not read history %s: %v\n", path, err)
	}
}

// saveHistory は履歴ファイルを書き出す。失敗したら警告を出す。
func saveHistory(h historyStore, path string, out io.Writer) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(out, "warning: could not save history: %v\n", err)
		return
	}

	if _, err := h.WriteHistory(f); err != nil {
		fmt.Fprintf(out, "warning: could not write history %s: %v\n", path, err)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(out, "warning: could not save history %s: %v\n", path, err)
	}
}
