// Package audit persists the raw output of every generation attempt so a
// rejected or corrected artifact can be inspected after the fact. Objects are
// keyed <runID>/<name>; the sink is best-effort and never blocks a response.
package audit

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"forgeui/internal/config"
	"forgeui/internal/safeio"
)

// Recorder stores one named document for a run.
type Recorder interface {
	Record(ctx context.Context, runID, name string, content []byte) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, string, string, []byte) error { return nil }

// FileRecorder writes documents under a fixed root directory. Keys are
// resolved through a safeio jail, so a key escaping the root is rejected.
type FileRecorder struct {
	root     string
	initOnce sync.Once
	dir      *safeio.Dir
	initErr  error
}

func NewFileRecorder(root string) *FileRecorder {
	return &FileRecorder{root: root}
}

func (f *FileRecorder) jail() (*safeio.Dir, error) {
	if f == nil || f.root == "" {
		return nil, fmt.Errorf("file recorder not configured")
	}
	f.initOnce.Do(func() {
		f.dir, f.initErr = safeio.NewDir(f.root)
	})
	return f.dir, f.initErr
}

func (f *FileRecorder) Record(_ context.Context, runID, name string, content []byte) error {
	runID = strings.TrimSpace(runID)
	name = strings.TrimSpace(name)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}
	dir, err := f.jail()
	if err != nil {
		return err
	}
	return dir.WriteFile(filepath.Join(runID, name), content, 0o644)
}

// NewFromConfig picks the sink for the current configuration: S3 when an
// endpoint is configured, a local file sink otherwise, and nothing at all
// when auditing is disabled.
func NewFromConfig(cfg config.AuditConfig, logger *log.Logger) Recorder {
	if logger == nil {
		logger = log.Default()
	}
	if !cfg.Enabled {
		return Nop{}
	}
	if cfg.Endpoint != "" {
		rec, err := NewS3Recorder(S3Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
		if err == nil {
			return rec
		}
		logger.Printf("audit: s3 sink unavailable, falling back to files: %v", err)
	}
	return NewFileRecorder(cfg.Dir)
}
