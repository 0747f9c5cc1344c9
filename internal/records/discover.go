package records

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Producers lists the producer directories under the output root in listing
// order. A missing root or a root with no directories is an environment
// error: there is nothing to process and the run must stop.
func Producers(outputRoot string) ([]string, error) {
	entries, err := os.ReadDir(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("output root not readable: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(outputRoot, e.Name()))
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no producer directories found in %s", outputRoot)
	}
	return dirs, nil
}

// RecordFiles lists the record JSON files in dir, in listing order.
func RecordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("producer directory not readable: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
