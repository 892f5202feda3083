// Package config は lox コマンドと REPL の設定ファイル（YAML）を読み込むパッケージ。
// 設定ファイルにない項目は Default() の値のまま残る。
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath はカレントディレクトリで探す設定ファイルの名前。
const DefaultPath = "lox.yaml"

const historyFileName = ".lox_history"

// Config は lox コマンドの設定。
type Config struct {
	Prompt             string `yaml:"prompt"`              // REPL のプロンプト
	ContinuationPrompt string `yaml:"continuation_prompt"` // 複数行入力の2行目以降のプロンプト
	HistoryFile        string `yaml:"history_file"`        // REPL の履歴ファイル。空なら履歴を保存しない
	TraceParser        bool   `yaml:"trace_parser"`        // パーサーのトレースを出力する
	Recover            bool   `yaml:"recover"`             // 構文エラーの後も解析を続けて全てのエラーを報告する
}

// Default は設定ファイルがないときの既定値を返す。
func Default() Config {
	cfg := Config{
		Prompt:             ">> ",
		ContinuationPrompt: ".. ",
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, historyFileName)
	}
	return cfg
}

// Load は path の設定ファイルを読み込む。ファイルがなければエラーを返す。
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config: empty path")
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional は Load と同じだが、ファイルが存在しなければ既定値を返す。
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Decode は r から YAML を読み、既定値に上書きした設定を返す。
// 未知のキーはエラーにする。空の入力は既定値のまま。
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	cfg.HistoryFile = expandHome(cfg.HistoryFile)
	return cfg, nil
}

// expandHome は先頭の "~/" をホームディレクトリに置き換える。
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
