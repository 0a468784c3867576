package publisher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Writer persists rendered pages into the site content directory. When the
// primary directory is unusable it falls back to FallbackDir, implementing
// the alternative_path recovery strategy for filesystem failures.
type Writer struct {
	ContentDir  string
	FallbackDir string
	logger      *logrus.Logger
}

// NewWriter creates a page writer.
func NewWriter(contentDir, fallbackDir string, logger *logrus.Logger) (*Writer, error) {
	if contentDir == "" {
		return nil, fmt.Errorf("content directory is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Writer{
		ContentDir:  contentDir,
		FallbackDir: fallbackDir,
		logger:      logger,
	}, nil
}

// Write stores the page under filename in the content directory and returns
// the path actually written. A non-nil primaryErr with a nil err means the
// primary path failed and the page landed in FallbackDir; the caller decides
// how to account for the suppressed failure.
func (w *Writer) Write(filename, content string) (path string, primaryErr error, err error) {
	path, err = w.writeTo(w.ContentDir, filename, content)
	if err == nil {
		return path, nil, nil
	}

	if w.FallbackDir == "" {
		return "", nil, err
	}

	w.logger.WithFields(logrus.Fields{
		"filename":     filename,
		"fallback_dir": w.FallbackDir,
	}).WithError(err).Warn("Primary content directory unusable, trying fallback")

	path, fallbackErr := w.writeTo(w.FallbackDir, filename, content)
	if fallbackErr != nil {
		return "", nil, fmt.Errorf("fallback write also failed: %w (primary: %v)", fallbackErr, err)
	}
	return path, err, nil
}

func (w *Writer) writeTo(dir, filename, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}

	w.logger.WithFields(logrus.Fields{
		"path":  path,
		"bytes": len(content),
	}).Debug("Wrote content file")

	return path, nil
}
