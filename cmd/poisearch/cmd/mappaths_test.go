package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMapPathsCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "world.svg")
	out := filepath.Join(dir, "mapPaths.json")
	svg := `<svg xmlns="http://www.w3.org/2000/svg"><path id="TW" d="M0 0 L1 1"/><path d="M2 2"/></svg>`
	if err := os.WriteFile(in, []byte(svg), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "mappaths", "--in", in, "--out", out)
	if err != nil {
		t.Fatalf("mappaths: %v", err)
	}
	if strings.TrimSpace(stdout) != "mapPaths.json generated!" {
		t.Errorf("stdout = %q", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got struct {
		ViewBox  string            `json:"viewBox"`
		MapPaths map[string]string `json:"mapPaths"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.ViewBox != "0 0 1000 600" || len(got.MapPaths) != 1 || got.MapPaths["TW"] != "M0 0 L1 1" {
		t.Errorf("output = %+v", got)
	}
}

func TestMapPathsCommand_NoPathsWarns(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "world.svg")
	if err := os.WriteFile(in, []byte(`<svg></svg>`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := execute(t, "mappaths", "--in", in, "--out", filepath.Join(dir, "out.json"))
	if err != nil {
		t.Fatalf("mappaths: %v", err)
	}
	if !strings.Contains(stderr, "no labeled paths") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestMapPathsCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "mappaths", "--in", filepath.Join(dir, "missing.svg"), "--out", filepath.Join(dir, "o.json"))
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}
