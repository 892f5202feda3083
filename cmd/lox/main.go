// Command lox は Lox言語のインタプリタ。
// スクリプトのパスを渡すとそれを実行し、渡さなければREPLを起動する。
//
//	lox [-config path] [-trace] [-recover] [script]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"lox/config"
	"lox/evaluator"
	"lox/lexer"
	"lox/object"
	"lox/parser"
	"lox/repl"
	"os"
)

// 終了コード（sysexits.h に合わせる）
const (
	exitOK       = 0
	exitUsage    = 64 // コマンドラインの誤り
	exitDataErr  = 65 // 字句エラー・構文エラー
	exitSoftware = 70 // 実行時エラー
	exitIOErr    = 74 // スクリプトが読めない
	exitConfig   = 78 // 設定ファイルが読めない
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run はコマンドライン引数を解釈して実行し、終了コードを返す。
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML config file (default "+config.DefaultPath+" if present)")
	trace := fs.Bool("trace", false, "print parser trace")
	recovery := fs.Bool("recover", false, "report every syntax error instead of stopping at the first")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: lox [flags] [script]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	cfg.TraceParser = cfg.TraceParser || *trace
	cfg.Recover = cfg.Recover || *recovery

	if fs.NArg() == 0 {
		repl.Start(stdin, stdout, cfg)
		return exitOK
	}

	return runFile(fs.Arg(0), stdout, stderr, cfg)
}

// loadConfig は -config が指定されていればそのファイルを、
// なければカレントディレクトリの lox.yaml（あれば）を読む。
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOptional(config.DefaultPath)
}

// runFile はスクリプトファイルを読み込んで実行する。
func runFile(path string, stdout, stderr io.Writer, cfg config.Config) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "lox: %v\n", err)
		return exitIOErr
	}
	return runSource(string(source), stdout, stderr, cfg)
}

// runSource はソースコードを解析して実行する。
// 構文エラーが1つでもあれば何も実行しない。
func runSource(source string, stdout, stderr io.Writer, cfg config.Config) int {
	var opts []parser.Option
	if cfg.Recover {
		opts = append(opts, parser.WithRecovery())
	}
	if cfg.TraceParser {
		opts = append(opts, parser.WithTrace(stderr))
	}

	program, err := parser.ParseProgram(source, opts...)
	if err != nil {
		reportStaticError(stderr, err)
		return exitDataErr
	}

	if err := evaluator.Run(program, nil, stdout); err != nil {
		var runtimeErr object.RuntimeError
		if errors.As(err, &runtimeErr) {
			fmt.Fprintln(stderr, runtimeErr.Error())
			return exitSoftware
		}
		fmt.Fprintf(stderr, "lox: %v\n", err)
		return exitIOErr
	}

	return exitOK
}

// reportStaticError は字句エラー・構文エラーを1行ずつ出力する。
func reportStaticError(stderr io.Writer, err error) {
	var list parser.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			fmt.Fprintln(stderr, e.Error())
		}
		return
	}

	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		fmt.Fprintln(stderr, lexErr.Error())
		return
	}

	fmt.Fprintln(stderr, err.Error())
}
