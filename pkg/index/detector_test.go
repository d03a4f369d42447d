// ABOUTME: Tests for the rebuild decision state machine
// ABOUTME: Covers forced, first-build, source-change and schema-change states

package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupDetectorFiles(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "brhelpcontent.xml")
	metaPath := filepath.Join(dir, "help.bleve.meta.json")

	if err := os.WriteFile(sourcePath, []byte(`<BrHelpContent><Page Id="p"/></BrHelpContent>`), 0o644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
	return sourcePath, metaPath
}

func storeCurrentMetadata(t *testing.T, sourcePath, metaPath string) {
	t.Helper()

	fp, err := Fingerprint(sourcePath)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	meta := &Metadata{
		SourceFingerprint: fp,
		SchemaVersion:     SchemaVersion,
		BuiltAt:           time.Now().UTC(),
		DocumentCount:     1,
	}
	if err := meta.Store(metaPath); err != nil {
		t.Fatalf("Failed to store metadata: %v", err)
	}
}

func TestFirstRunNeedsRebuild(t *testing.T) {
	sourcePath, metaPath := setupDetectorFiles(t)

	d, err := Detect(sourcePath, metaPath, false)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !d.Rebuild {
		t.Error("Expected rebuild on first run")
	}
	if d.Reason != ReasonFirstBuild {
		t.Errorf("Expected ReasonFirstBuild, got %s", d.Reason)
	}
	if d.SourceFingerprint == "" {
		t.Error("Expected fingerprint to be populated")
	}
}

func TestUnchangedSourceIsCurrent(t *testing.T) {
	sourcePath, metaPath := setupDetectorFiles(t)
	storeCurrentMetadata(t, sourcePath, metaPath)

	d, err := Detect(sourcePath, metaPath, false)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if d.Rebuild {
		t.Errorf("Expected no rebuild, got reason %s", d.Reason)
	}
	if d.Reason != ReasonCurrent {
		t.Errorf("Expected ReasonCurrent, got %s", d.Reason)
	}
	if d.Metadata == nil {
		t.Error("Expected decision to carry loaded metadata")
	}
}

func TestForceAlwaysRebuilds(t *testing.T) {
	sourcePath, metaPath := setupDetectorFiles(t)
	storeCurrentMetadata(t, sourcePath, metaPath)

	d, err := Detect(sourcePath, metaPath, true)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !d.Rebuild || d.Reason != ReasonForced {
		t.Errorf("Expected forced rebuild, got %+v", d)
	}
}

func TestSourceChangeTriggersRebuild(t *testing.T) {
	sourcePath, metaPath := setupDetectorFiles(t)
	storeCurrentMetadata(t, sourcePath, metaPath)

	// Any byte-level change counts
	f, err := os.OpenFile(sourcePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("Failed to open source: %v", err)
	}
	f.WriteString("\n<!-- modified -->")
	f.Close()

	d, err := Detect(sourcePath, metaPath, false)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !d.Rebuild || d.Reason != ReasonSourceChanged {
		t.Errorf("Expected source-change rebuild, got %+v", d)
	}
}

func TestSchemaChangeTriggersRebuild(t *testing.T) {
	sourcePath, metaPath := setupDetectorFiles(t)

	fp, err := Fingerprint(sourcePath)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	stale := &Metadata{
		SourceFingerprint: fp,
		SchemaVersion:     "0-obsolete",
		BuiltAt:           time.Now().UTC(),
	}
	if err := stale.Store(metaPath); err != nil {
		t.Fatalf("Failed to store metadata: %v", err)
	}

	d, err := Detect(sourcePath, metaPath, false)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !d.Rebuild || d.Reason != ReasonSchemaChanged {
		t.Errorf("Expected schema-change rebuild, got %+v", d)
	}
}

func TestCorruptMetadataTriggersRebuild(t *testing.T) {
	sourcePath, metaPath := setupDetectorFiles(t)

	if err := os.WriteFile(metaPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt metadata: %v", err)
	}

	d, err := Detect(sourcePath, metaPath, false)
	if err != nil {
		t.Fatalf("Detect must recover from corrupt metadata, got: %v", err)
	}
	if !d.Rebuild || d.Reason != ReasonFirstBuild {
		t.Errorf("Expected first-build recovery, got %+v", d)
	}
	if d.Metadata != nil {
		t.Error("Corrupt metadata must not be carried into the decision")
	}
}

func TestDetectMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Detect(filepath.Join(dir, "absent.xml"), filepath.Join(dir, "meta.json"), false)
	if err == nil {
		t.Error("Expected error for missing source document")
	}
}

func TestDetectHasNoSideEffects(t *testing.T) {
	sourcePath, metaPath := setupDetectorFiles(t)

	if _, err := Detect(sourcePath, metaPath, false); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// The check must not create metadata
	if _, err := os.Stat(metaPath); !os.IsNotExist(err) {
		t.Error("Detect created metadata as a side effect")
	}
}

func TestReasonStrings(t *testing.T) {
	cases := map[Reason]string{
		ReasonCurrent:       "current",
		ReasonForced:        "forced",
		ReasonFirstBuild:    "first_build",
		ReasonSourceChanged: "source_changed",
		ReasonSchemaChanged: "schema_changed",
	}
	for reason, want := range cases {
		if got := reason.String(); got != want {
			t.Errorf("Reason %d: expected %s, got %s", reason, want, got)
		}
	}
}
