package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome    = "SNAPKEEP_CACHE_HOME" // override for tests
	dirName    = "snapkeep"
	dbFilename = "snapshots.db"
)

// DataDir returns the directory where local state is stored, creating
// it with 0700 permissions if needed.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user cache dir: %w", err)
	}
	dir := filepath.Join(base, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// DBPath returns the absolute path to the SQLite snapshot file.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}

// MediaDir returns the directory used for locally materialized images,
// creating it if needed.
func MediaDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	media := filepath.Join(dir, "media")
	if err := os.MkdirAll(media, 0o700); err != nil {
		return "", err
	}
	return media, nil
}
