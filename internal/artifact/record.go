package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/v4l2build/internal/errs"
)

// RecordFile is written to the install directory after a successful build.
const RecordFile = ".artifacts.json"

// Record is the persisted form of a build's artifacts.
type Record struct {
	Target      string    `json:"target"`
	Libs        []string  `json:"libs"`
	Upstream    string    `json:"upstream,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	BuildTime   time.Time `json:"build_time"`
}

// NewRecord captures a for persisting.
func NewRecord(a Artifacts, upstream, fingerprint string) *Record {
	return &Record{
		Target:      a.target,
		Libs:        a.Libs(),
		Upstream:    upstream,
		Fingerprint: fingerprint,
		BuildTime:   time.Now(),
	}
}

// Save writes r to installDir.
func Save(installDir string, r *Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact record: %w", err)
	}
	path := filepath.Join(installDir, RecordFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.IO("write", path, err)
	}
	return nil
}

// Load reads the record in installDir and returns the artifacts it
// describes.
func Load(installDir string) (Artifacts, *Record, error) {
	path := filepath.Join(installDir, RecordFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifacts{}, nil, errs.IO("read", path, err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Artifacts{}, nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return New(installDir, r.Target, r.Libs), &r, nil
}
