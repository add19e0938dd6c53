// Package device manages the per-profile context identifier used to
// tag the origin of change notifications. It is a random id generated
// once and persisted, not a security credential.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const idFileName = "device_id"

// LoadOrCreate returns the persisted device id from dir, generating
// and persisting a fresh one on first use.
func LoadOrCreate(dir string) (string, error) {
	path := filepath.Join(dir, idFileName)
	if data, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(data))
		if _, err := uuid.Parse(id); err == nil {
			return id, nil
		}
		// Unreadable id file: fall through and regenerate.
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	id := uuid.New().String()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
