// Package config loads the key=value settings file used by the regage
// downloader. The file format is one KEY=VALUE pair per line with
// #-prefixed comments, matching the informacionCerts files already in use.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the explicit configuration threaded through every component.
// Nothing reads these values from package-level state.
type Config struct {
	// CertName is the display name of the client certificate to pick in the
	// browser's native certificate dialog (NOMBRE_CERT).
	CertName string

	// OutputDir is the root holding one folder per producer with the record
	// JSON files to process.
	OutputDir string
	// TrashDir is the archive root; processed record files are moved into
	// TrashDir/<producer>.
	TrashDir string
	// DownloadsDir is the root under which per-record download folders are
	// created.
	DownloadsDir string

	Headless   bool
	BrowserBin string
	ProxyURL   string

	// NavAttempts/NavDelay bound the retry loop around page opens.
	NavAttempts int
	NavDelay    time.Duration
	// AuthAttempts/AuthDelay bound the retry loop around the whole
	// authentication sequence.
	AuthAttempts int
	AuthDelay    time.Duration
	// ElementTimeout bounds each individual element wait.
	ElementTimeout time.Duration
	// PageLoadTimeout bounds a single navigation before the retry policy
	// counts it as a failed attempt.
	PageLoadTimeout time.Duration

	// ExpectedDownloads is how many new files a record is expected to
	// produce before the wait stops early.
	ExpectedDownloads int
	DownloadTimeout   time.Duration
	DownloadPoll      time.Duration

	// RecordPause is the sleep between records, to avoid looking like a
	// burst of automated sessions.
	RecordPause time.Duration

	MaxRecords int
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	return Config{
		OutputDir:         "output",
		TrashDir:          "trash",
		DownloadsDir:      "descargas",
		NavAttempts:       5000,
		NavDelay:          500 * time.Millisecond,
		AuthAttempts:      100,
		AuthDelay:         500 * time.Millisecond,
		ElementTimeout:    10 * time.Second,
		PageLoadTimeout:   30 * time.Second,
		ExpectedDownloads: 2,
		DownloadTimeout:   90 * time.Second,
		DownloadPoll:      time.Second,
		RecordPause:       10 * time.Second,
		MaxRecords:        100,
	}
}

// Load reads the key=value file at path and overlays it on Default().
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			continue
		}
		if err := cfg.set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return cfg, fmt.Errorf("config line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	return cfg, nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "NOMBRE_CERT":
		c.CertName = value
	case "OUTPUT_DIR":
		c.OutputDir = value
	case "TRASH_DIR":
		c.TrashDir = value
	case "DOWNLOADS_DIR":
		c.DownloadsDir = value
	case "HEADLESS":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS value %q: %w", value, err)
		}
		c.Headless = v
	case "BROWSER_BIN":
		c.BrowserBin = value
	case "PROXY_URL":
		c.ProxyURL = value
	case "NAV_MAX_ATTEMPTS":
		return setInt(&c.NavAttempts, key, value)
	case "NAV_DELAY_MS":
		return setMillis(&c.NavDelay, key, value)
	case "AUTH_MAX_ATTEMPTS":
		return setInt(&c.AuthAttempts, key, value)
	case "AUTH_DELAY_MS":
		return setMillis(&c.AuthDelay, key, value)
	case "ELEMENT_TIMEOUT_S":
		return setSeconds(&c.ElementTimeout, key, value)
	case "PAGE_TIMEOUT_S":
		return setSeconds(&c.PageLoadTimeout, key, value)
	case "NUM_DESCARGAS":
		return setInt(&c.ExpectedDownloads, key, value)
	case "DOWNLOAD_TIMEOUT_S":
		return setSeconds(&c.DownloadTimeout, key, value)
	case "DOWNLOAD_POLL_MS":
		return setMillis(&c.DownloadPoll, key, value)
	case "RECORD_PAUSE_S":
		return setSeconds(&c.RecordPause, key, value)
	case "MAX_REGISTROS":
		return setInt(&c.MaxRecords, key, value)
	default:
		// Unknown keys are tolerated so the cert info files can carry
		// extra entries used by other tools.
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", key, v)
	}
	*dst = v
	return nil
}

func setMillis(dst *time.Duration, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	*dst = time.Duration(v) * time.Millisecond
	return nil
}

func setSeconds(dst *time.Duration, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	*dst = time.Duration(v) * time.Second
	return nil
}
