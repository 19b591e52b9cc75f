package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"encoding/json/v2"

	"github.com/bookhavenapp/bookhaven-server/internal/backup/stream"
)

// RestoreResult describes a completed restore.
type RestoreResult struct {
	Counts   RecordCounts  `json:"counts"`
	Duration time.Duration `json:"duration"`
}

// readManifest extracts and validates the manifest from an archive.
func readManifest(zr *zip.ReadCloser) (*Manifest, error) {
	rc, err := stream.OpenFile(zr, manifestFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidManifest, err)
	}
	defer rc.Close()

	var manifest Manifest
	if err := json.UnmarshalRead(rc, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidManifest, err)
	}

	major, _, _ := strings.Cut(FormatVersion, ".")
	if got, _, _ := strings.Cut(manifest.Version, "."); got != major {
		return nil, fmt.Errorf("%w: format %q", ErrVersionMismatch, manifest.Version)
	}

	return &manifest, nil
}

// Validate checks an archive's manifest and integrity without importing it.
func (s *Service) Validate(ctx context.Context, path string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	manifest, err := readManifest(zr)
	if err != nil {
		return nil, err
	}

	rc, err := stream.OpenFile(zr, dataFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptedBackup, err)
	}

	hasher := sha256.New()
	for rec, err := range stream.NewReader[Record](rc).All() {
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCorruptedBackup, err)
		}
		hashPair(hasher, rec.Key, rec.Value)
	}

	if hex.EncodeToString(hasher.Sum(nil)) != manifest.Checksum {
		return nil, ErrCorruptedBackup
	}

	return manifest, nil
}

// Restore replaces the store contents with the archive at path. The archive
// is validated first; the store is only touched once the backup checks out.
// The caller is responsible for rebuilding the search index afterwards.
func (s *Service) Restore(ctx context.Context, path string) (*RestoreResult, error) {
	start := time.Now()

	manifest, err := s.Validate(ctx, path)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting restore",
		"path", path,
		"created_at", manifest.CreatedAt,
		"records", manifest.Counts.Total(),
	)

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	rc, err := stream.OpenFile(zr, dataFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptedBackup, err)
	}

	var readErr error
	reader := stream.NewReader[Record](rc)

	err = s.store.ImportSnapshot(ctx, func(yield func(string, []byte) bool) {
		for rec, err := range reader.All() {
			if err != nil {
				readErr = err
				return
			}
			if !yield(rec.Key, rec.Value) {
				return
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptedBackup, readErr)
	}

	result := &RestoreResult{
		Counts:   manifest.Counts,
		Duration: time.Since(start),
	}

	s.logger.Info("restore complete",
		"records", result.Counts.Total(),
		"duration", result.Duration,
	)

	return result, nil
}
