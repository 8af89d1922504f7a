// Package testutil provides shared test infrastructure for redpile: golden
// console sessions and script fixtures.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_sessions.json.
type GoldenDataset struct {
	Sessions []GoldenSession `json:"sessions"`
}

// GoldenSession is a console session replayed against a config script.
type GoldenSession struct {
	Name     string   `json:"name"`
	Script   string   `json:"script"` // path relative to the repo root
	Args     []string `json:"args"`   // options placed before the script path
	Commands []string `json:"commands"`
	Status   int      `json:"status"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

// Input returns the commands joined into stdin text.
func (s GoldenSession) Input() string {
	if len(s.Commands) == 0 {
		return ""
	}
	return strings.Join(s.Commands, "\n") + "\n"
}

// RepoPath resolves a path relative to the repository root.
// The path is resolved relative to this source file: internal/testutil/ → repo root.
func RepoPath(t *testing.T, rel string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", filepath.FromSlash(rel))
}

// LoadGoldenDataset loads the golden sessions from the testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()
	data, err := os.ReadFile(RepoPath(t, "testdata/golden_sessions.json"))
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}

// WriteScript writes a config script into a fresh temporary directory and
// returns its path.
func WriteScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.lua")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}
