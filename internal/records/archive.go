package records

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive moves the record file at path into trashRoot/producer, creating
// the partition directory when absent. The file is moved, never copied in
// place or deleted: after a successful archive the original location no
// longer holds it. An existing archived file with the same name is never
// overwritten; the incoming file gets a timestamp suffix instead, so a re-run
// after a crash keeps both copies.
func Archive(path, trashRoot, producer string) (string, error) {
	partition := filepath.Join(trashRoot, producer)
	if err := os.MkdirAll(partition, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive partition: %w", err)
	}

	dest := filepath.Join(partition, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		dest = timestamped(dest)
	}

	if err := move(path, dest); err != nil {
		return "", fmt.Errorf("failed to archive record file: %w", err)
	}
	return dest, nil
}

// timestamped inserts a UTC timestamp before the extension so the new copy
// coexists with the already-archived one.
func timestamped(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", stem, time.Now().UTC().Format("20060102T150405"), ext)
}

// move renames, falling back to copy-and-remove when the archive lives on a
// different filesystem.
func move(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return os.Remove(src)
}
