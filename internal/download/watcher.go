// Package download watches a directory for files the browser drops into it
// and manages the per-record download folders.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// ErrIncomplete reports that the wait deadline passed before the expected
// number of new files appeared. The names that did appear are still returned
// alongside it.
var ErrIncomplete = errors.New("expected downloads did not all appear in time")

// partialSuffixes are in-progress download artifacts the browser renames on
// completion; they never count as finished files.
var partialSuffixes = []string{".crdownload", ".tmp", ".part", ".download"}

// Snapshot returns the set of completed file names currently in dir.
func Snapshot(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read download directory: %w", err)
	}
	state := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() || isPartial(e.Name()) {
			continue
		}
		state[e.Name()] = struct{}{}
	}
	return state, nil
}

// WaitForNew polls dir until want files that were not in old have finished
// appearing, the deadline passes, or ctx is cancelled. It returns the sorted
// names of the new files; on timeout the partial list comes back together
// with ErrIncomplete.
func WaitForNew(ctx context.Context, dir string, old map[string]struct{}, want int, timeout, poll time.Duration) ([]string, error) {
	deadline := time.Now().Add(timeout)

	for {
		current, err := Snapshot(dir)
		if err != nil {
			return nil, err
		}

		var fresh []string
		for name := range current {
			if _, seen := old[name]; !seen {
				fresh = append(fresh, name)
			}
		}
		sort.Strings(fresh)

		if len(fresh) >= want {
			return fresh, nil
		}
		if time.Now().After(deadline) {
			return fresh, fmt.Errorf("%w: got %d of %d", ErrIncomplete, len(fresh), want)
		}

		select {
		case <-time.After(poll):
		case <-ctx.Done():
			return fresh, ctx.Err()
		}
	}
}

func isPartial(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
