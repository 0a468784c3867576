package publisher

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

// SiteBuilder triggers the static site build.
type SiteBuilder interface {
	Build(ctx context.Context) error
}

// HugoBuilder runs the hugo binary in the site directory.
type HugoBuilder struct {
	SiteDir string
	Binary  string
	Timeout time.Duration
	logger  *logrus.Logger
}

// NewHugoBuilder creates a builder for the given site directory.
func NewHugoBuilder(siteDir string, logger *logrus.Logger) (*HugoBuilder, error) {
	if siteDir == "" {
		return nil, fmt.Errorf("site directory is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &HugoBuilder{
		SiteDir: siteDir,
		Binary:  "hugo",
		Timeout: 5 * time.Minute,
		logger:  logger,
	}, nil
}

// Build runs the site build, bounded by Timeout.
func (b *HugoBuilder) Build(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.Binary, "--minify")
	cmd.Dir = b.SiteDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("hugo build failed: %w: %s", err, stderr.String())
	}

	b.logger.WithFields(logrus.Fields{
		"site_dir": b.SiteDir,
		"duration": time.Since(start).String(),
	}).Info("Site build completed")

	return nil
}
