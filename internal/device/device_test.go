package device

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreate(t *testing.T) {
	dir := t.TempDir()

	id, err := LoadOrCreate(dir)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	again, err := LoadOrCreate(dir)
	if err != nil {
		t.Fatalf("LoadOrCreate (second): %v", err)
	}
	if again != id {
		t.Errorf("id not stable across loads: %q vs %q", again, id)
	}

	t.Run("garbage id file is regenerated", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "device_id"), []byte("not-a-uuid"), 0o644); err != nil {
			t.Fatal(err)
		}
		fresh, err := LoadOrCreate(dir)
		if err != nil {
			t.Fatalf("LoadOrCreate: %v", err)
		}
		if fresh == "not-a-uuid" || fresh == "" {
			t.Errorf("expected a regenerated id, got %q", fresh)
		}
	})
}
