// ABOUTME: Persisted index metadata with atomic replace-on-success
// ABOUTME: Content fingerprinting of the structure document

package index

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Metadata records what the persisted index was built from. It is read at
// every startup and written only after a rebuild completes, so a failed
// rebuild leaves the previous record (and index) intact.
type Metadata struct {
	SourceFingerprint string    `json:"source_fingerprint"`
	SchemaVersion     string    `json:"schema_version"`
	BuiltAt           time.Time `json:"built_at"`
	DocumentCount     int       `json:"document_count"`
}

// LoadMetadata reads the metadata record. A missing file returns (nil, nil);
// that is the normal first-run state, not an error.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: read metadata %s: %w", path, err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("index: decode metadata %s: %w", path, err)
	}
	return &m, nil
}

// Store writes the metadata record atomically: a temp file in the same
// directory is renamed over the target, so readers never observe a partial
// record.
func (m *Metadata) Store(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encode metadata: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".meta-*")
	if err != nil {
		return fmt.Errorf("index: create metadata temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("index: write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index: close metadata temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index: replace metadata: %w", err)
	}
	return nil
}

// Fingerprint computes the SHA-256 content hash of the file at path,
// hex-encoded. Any byte-level change to the structure document changes it.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("index: fingerprint %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("index: fingerprint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
