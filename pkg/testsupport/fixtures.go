package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// ReadFixture returns the contents of a testdata file as a string.
func ReadFixture(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

// LoadGolden decodes a JSON golden file into v.
func LoadGolden(t testing.TB, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
}
