package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ChecksumManifest is the on-disk .checksums format: BLAKE3 hashes of the
// config files in a directory, keyed by basename.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// checksumFilename is the manifest written next to the config file.
const checksumFilename = ".checksums"

// ComputeHash returns the hex BLAKE3 hash of data.
func ComputeHash(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// LockConfig computes the config file's hash and writes the .checksums
// manifest in the same directory, authorizing the current contents.
func LockConfig(configPath string) (string, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("config file not found: %s", absPath)
	}
	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read config: %w", err)
	}

	manifest := ChecksumManifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes: map[string]string{
			filepath.Base(absPath): ComputeHash(data),
		},
	}

	out, err := yaml.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("failed to marshal checksums: %w", err)
	}

	checksumPath := filepath.Join(filepath.Dir(absPath), checksumFilename)
	// Restrictive permissions: the manifest is the tamper reference.
	if err := os.WriteFile(checksumPath, out, 0600); err != nil {
		return "", fmt.Errorf("failed to write checksums: %w", err)
	}

	return checksumPath, nil
}

// loadChecksums reads the .checksums manifest from a directory.
func loadChecksums(dir string) (*ChecksumManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, checksumFilename))
	if err != nil {
		return nil, err
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}

	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}

	return &manifest, nil
}

// verifyConfigHash checks the config file against the .checksums manifest
// in its directory. A missing manifest skips verification; a manifest that
// exists but does not cover or match the file is a hard failure.
func verifyConfigHash(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)

	manifest, err := loadChecksums(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read checksums in %s: %w", dir, err)
	}

	basename := filepath.Base(configPath)
	expected, ok := manifest.Hashes[basename]
	if !ok {
		return fmt.Errorf("config file %s has no hash in checksums at %s\n"+
			"Run: sentry-relay config lock --config %s", basename, dir, configPath)
	}

	if actual := ComputeHash(data); actual != expected {
		return fmt.Errorf("config verification failed for %s: expected %s, got %s\n"+
			"This indicates tampering or unauthorized modification.\n"+
			"If you edited this file intentionally, run: sentry-relay config lock --config %s",
			basename, expected, actual, configPath)
	}

	return nil
}
