package download

import (
	"fmt"
	"os"
	"path/filepath"
)

// UniqueDir creates and returns root/name, or root/name_2, name_3, ... when
// earlier runs left a folder with the same name behind. Every record gets a
// directory of its own so the watcher only ever sees that record's files.
func UniqueDir(root, name string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads root: %w", err)
	}

	candidate := filepath.Join(root, name)
	for i := 2; ; i++ {
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create download directory: %w", err)
		}
		candidate = filepath.Join(root, fmt.Sprintf("%s_%d", name, i))
	}
}
