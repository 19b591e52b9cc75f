package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"encoding/json/v2"

	"github.com/bookhavenapp/bookhaven-server/internal/backup/stream"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

const (
	archiveSuffix = ".bookhaven.zip"
	manifestFile  = "manifest.json"
	dataFile      = "data.jsonl"
)

// Record is one key/value pair from the store. Values are raw bytes; entity
// records happen to hold JSON but index keys hold plain IDs.
type Record struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// Options configures a backup run.
type Options struct {
	// OutputPath overrides the generated archive path.
	OutputPath string
}

// Result describes a completed backup.
type Result struct {
	ID        string        `json:"id"`
	Path      string        `json:"path"`
	Size      int64         `json:"size"`
	Counts    RecordCounts  `json:"counts"`
	Duration  time.Duration `json:"duration"`
	Checksum  string        `json:"checksum"`
	CreatedAt time.Time     `json:"created_at"`
}

// Info describes an archive on disk.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Service creates, lists and restores store backups.
type Service struct {
	store      *store.Store
	backupDir  string
	serverName string
	version    string
	logger     *slog.Logger
}

// NewService creates a backup Service writing archives under backupDir.
func NewService(s *store.Store, backupDir, serverName, version string, logger *slog.Logger) *Service {
	return &Service{
		store:      s,
		backupDir:  backupDir,
		serverName: serverName,
		version:    version,
		logger:     logger,
	}
}

// Create writes a full store snapshot to a zip archive and returns its
// metadata. The snapshot is taken in a single read transaction, so a backup
// during live traffic is still consistent.
func (s *Service) Create(ctx context.Context, opts Options) (*Result, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	start := time.Now()
	outputPath := opts.OutputPath
	if outputPath == "" {
		timestamp := start.Format("2006-01-02-150405")
		outputPath = filepath.Join(s.backupDir, "backup-"+timestamp+archiveSuffix)
	}

	s.logger.Info("creating backup", "output", outputPath)

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	dw, err := stream.NewWriter(zw, dataFile)
	if err != nil {
		return nil, fmt.Errorf("create data stream: %w", err)
	}

	hasher := sha256.New()
	var counts RecordCounts

	err = s.store.Snapshot(ctx, func(key string, value []byte) error {
		countRecord(&counts, key)
		hashPair(hasher, key, value)
		return dw.Write(Record{Key: key, Value: value})
	})
	if err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))
	manifest := Manifest{
		Version:       FormatVersion,
		CreatedAt:     start,
		ServerName:    s.serverName,
		ServerVersion: s.version,
		Counts:        counts,
		Checksum:      checksum,
	}

	mw, err := zw.Create(manifestFile)
	if err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	if err := json.MarshalWrite(mw, manifest); err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("close archive: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	result := &Result{
		ID:        archiveID(filepath.Base(outputPath)),
		Path:      outputPath,
		Size:      info.Size(),
		Counts:    counts,
		Duration:  time.Since(start),
		Checksum:  checksum,
		CreatedAt: start,
	}

	s.logger.Info("backup complete",
		"path", result.Path,
		"size", result.Size,
		"records", counts.Total(),
		"duration", result.Duration,
	)

	return result, nil
}

// List returns all archives in the backup directory, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			ID:        archiveID(entry.Name()),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Find locates an archive by its ID.
func (s *Service) Find(ctx context.Context, id string) (*Info, error) {
	backups, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range backups {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, ErrBackupNotFound
}

func archiveID(filename string) string {
	return strings.TrimSuffix(filename, archiveSuffix)
}

// hashPair feeds a key/value pair into the integrity hash with length
// prefixes so pair boundaries can't collide.
func hashPair(h hash.Hash, key string, value []byte) {
	fmt.Fprintf(h, "%d:%s%d:", len(key), key, len(value))
	h.Write(value)
}

// countRecord bumps the counter for primary records; index keys don't count.
func countRecord(c *RecordCounts, key string) {
	if strings.HasPrefix(key, "idx:") {
		return
	}

	switch {
	case strings.HasPrefix(key, "user:"):
		if !strings.HasPrefix(key, "user:idx:") {
			c.Users++
		}
	case strings.HasPrefix(key, "book:"):
		if !strings.HasPrefix(key, "book:idx:") {
			c.Books++
		}
	case strings.HasPrefix(key, "author:"):
		if !strings.HasPrefix(key, "author:idx:") {
			c.Authors++
		}
	case strings.HasPrefix(key, "address:"):
		c.Addresses++
	case strings.HasPrefix(key, "order:"):
		c.Orders++
	case strings.HasPrefix(key, "session:"):
		c.Sessions++
	case strings.HasPrefix(key, "cart:"):
		c.Carts++
	}
}
