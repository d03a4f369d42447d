// ABOUTME: Rebuild decision as an explicit finite-state check
// ABOUTME: Compares source fingerprint and schema version against metadata

package index

// Reason explains why a rebuild is or is not required
type Reason int

const (
	// ReasonCurrent means the index matches the source and schema
	ReasonCurrent Reason = iota

	// ReasonForced means the caller requested an unconditional rebuild
	ReasonForced

	// ReasonFirstBuild means no metadata exists yet
	ReasonFirstBuild

	// ReasonSourceChanged means the structure document fingerprint differs
	ReasonSourceChanged

	// ReasonSchemaChanged means the index schema version differs
	ReasonSchemaChanged
)

// String returns the reason label used in logs and metrics
func (r Reason) String() string {
	switch r {
	case ReasonCurrent:
		return "current"
	case ReasonForced:
		return "forced"
	case ReasonFirstBuild:
		return "first_build"
	case ReasonSourceChanged:
		return "source_changed"
	case ReasonSchemaChanged:
		return "schema_changed"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a rebuild check. SourceFingerprint is always
// populated so a following build can persist it without rehashing.
type Decision struct {
	Rebuild           bool
	Reason            Reason
	SourceFingerprint string
	Metadata          *Metadata // nil when no metadata exists
}

// Detect decides whether the index must be rebuilt. The check itself has no
// side effects: metadata is only ever written after a successful rebuild, so
// a failed attempt leaves the system able to retry on next startup.
//
// Policy, in order: forced flag, missing metadata, source fingerprint
// mismatch, schema version mismatch.
func Detect(sourcePath, metaPath string, force bool) (Decision, error) {
	fingerprint, err := Fingerprint(sourcePath)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{SourceFingerprint: fingerprint}

	if force {
		d.Rebuild = true
		d.Reason = ReasonForced
		return d, nil
	}

	meta, err := LoadMetadata(metaPath)
	if err != nil {
		// A corrupt record is indistinguishable from none: rebuild and let the
		// build replace it, instead of blocking startup on a damaged sidecar
		meta = nil
	}
	d.Metadata = meta

	switch {
	case meta == nil:
		d.Rebuild = true
		d.Reason = ReasonFirstBuild
	case meta.SourceFingerprint != fingerprint:
		d.Rebuild = true
		d.Reason = ReasonSourceChanged
	case meta.SchemaVersion != SchemaVersion:
		d.Rebuild = true
		d.Reason = ReasonSchemaChanged
	default:
		d.Reason = ReasonCurrent
	}

	return d, nil
}
