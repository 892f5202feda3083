// Package testutil は lox のテストで共有するヘルパー。
// testdata/ の YAML に書かれた実行シナリオを読み込む。
package testutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario は1本のスクリプトと、その実行結果の期待値。
type Scenario struct {
	Name           string `yaml:"name"`
	Source         string `yaml:"source"`
	Stdout         string `yaml:"stdout"`
	ExitCode       int    `yaml:"exit_code"`
	StderrContains string `yaml:"stderr_contains"`
}

// LoadScenarios は path の YAML からシナリオの一覧を読み込む。
// 名前のないシナリオや重複した名前はエラーにする。
func LoadScenarios(path string) ([]Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var scenarios []Scenario
	if err := decoder.Decode(&scenarios); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	seen := make(map[string]bool, len(scenarios))
	for i, s := range scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("%s: scenario #%d has no name", path, i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%s: duplicate scenario %q", path, s.Name)
		}
		seen[s.Name] = true
	}

	return scenarios, nil
}
