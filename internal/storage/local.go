// Package storage persists rendered reports: timestamped files on the
// local filesystem, plus an optional S3 archive for retention.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Local writes rendered reports under a reports directory.
type Local struct {
	dir string
}

// NewLocal creates the reports directory if needed.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the reports directory path.
func (l *Local) Dir() string {
	return l.dir
}

// Save writes both renderings with a shared timestamped basename and
// returns the paths written.
func (l *Local) Save(generatedAt time.Time, textReport, htmlReport string) (textPath, htmlPath string, err error) {
	base := "report-" + generatedAt.UTC().Format("2006-01-02-150405")

	textPath = filepath.Join(l.dir, base+".txt")
	if err = os.WriteFile(textPath, []byte(textReport), 0o644); err != nil {
		return "", "", fmt.Errorf("writing text report: %w", err)
	}

	htmlPath = filepath.Join(l.dir, base+".html")
	if err = os.WriteFile(htmlPath, []byte(htmlReport), 0o644); err != nil {
		return "", "", fmt.Errorf("writing html report: %w", err)
	}

	return textPath, htmlPath, nil
}
