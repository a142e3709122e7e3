package utils_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/lungstat-cli/internal/utils"
	"github.com/google/uuid"
)

func TestSafeWriteFileCreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	if err := utils.SafeWriteFile(path, []byte("a,b\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "a,b\n" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestManifestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	m := utils.NewManifest("anova", "in.csv", []string{"fev1"}, "healthy")
	m.Rows = utils.RowCounts{Read: 10, NoStatus: 1, Filtered: 2, Analysed: 7}
	m.AddOutput("results.csv")
	if err := m.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got utils.Manifest
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := uuid.Parse(got.RunID); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", got.RunID, err)
	}
	if got.Rows.Analysed != 7 || len(got.Outputs) != 1 || got.Filter != "healthy" {
		t.Fatalf("manifest = %+v", got)
	}
}
