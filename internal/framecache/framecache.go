package framecache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"spool/internal/catalog"
	"spool/internal/config"
	"spool/internal/fingerprint"
	"spool/internal/logging"
	"spool/internal/video"
)

// freeSpaceFloor is the minimum free-space ratio we allow before pruning
// (e.g. 0.10 => 90% full).
const freeSpaceFloor = 0.10

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (total uint64, free uint64, err error)

// Manager handles storing, locating, and pruning cached frame artifacts.
type Manager struct {
	root     string
	maxBytes int64
	index    *catalog.Store
	logger   *slog.Logger
	statfs   statfsFunc
	lock     *flock.Flock
}

// Stats describes current cache usage.
type Stats struct {
	Entries      int     `json:"entries"`
	TotalBytes   int64   `json:"total_bytes"`
	MaxBytes     int64   `json:"max_bytes"`
	FreeBytes    uint64  `json:"free_bytes"`
	TotalFSBytes uint64  `json:"total_fs_bytes"`
	FreeRatio    float64 `json:"free_ratio"`
}

// NewManager builds a cache manager when enabled; returns nil when caching
// is disabled or misconfigured.
func NewManager(cfg *config.Config, index *catalog.Store, logger *slog.Logger) *Manager {
	if cfg == nil || !cfg.FrameCache.Enabled || index == nil {
		return nil
	}
	root := strings.TrimSpace(cfg.Paths.CacheDir)
	if root == "" || cfg.FrameCache.MaxGiB <= 0 {
		return nil
	}
	manager := &Manager{
		root:     root,
		maxBytes: int64(cfg.FrameCache.MaxGiB) * 1024 * 1024 * 1024,
		index:    index,
		statfs:   realStatfs,
		lock:     flock.New(filepath.Join(root, ".maintenance.lock")),
	}
	manager.SetLogger(logger)
	return manager
}

// SetLogger refreshes the manager's logging destination.
func (m *Manager) SetLogger(logger *slog.Logger) {
	if m == nil {
		return
	}
	m.logger = logging.NewComponentLogger(logger, "framecache")
}

// Root returns the cache directory.
func (m *Manager) Root() string {
	if m == nil {
		return ""
	}
	return m.root
}

// ArtifactName returns the deterministic file name for a cached frame:
// the hex-encoded fingerprint plus the container extension the pixel format
// stores in.
func ArtifactName(fp fingerprint.Fingerprint, format video.PixelFormat) string {
	return fp.Encoded() + format.Extension()
}

// Path returns the absolute artifact location for (fingerprint, format).
func (m *Manager) Path(fp fingerprint.Fingerprint, format video.PixelFormat) string {
	if m == nil {
		return ""
	}
	return filepath.Join(m.root, ArtifactName(fp, format))
}

// Exists reports whether a finished artifact is present for (fingerprint,
// format). A catalog row without its file is treated as absent and the stale
// row dropped, so a hand-deleted cache directory heals itself.
func (m *Manager) Exists(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat) (bool, error) {
	if m == nil {
		return false, nil
	}
	has, err := m.index.Has(ctx, fp, format)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	if _, err := os.Stat(m.Path(fp, format)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if dropErr := m.index.Remove(ctx, fp, format); dropErr != nil {
				return false, dropErr
			}
			m.logger.WarnContext(ctx, "dropped catalog row for missing artifact",
				logging.String(logging.FieldFingerprint, fp.String()),
				logging.String("pixel_format", format.String()),
			)
			return false, nil
		}
		return false, fmt.Errorf("framecache: stat artifact: %w", err)
	}
	return true, nil
}

// Write persists frame data for (fingerprint, format) and records it in the
// catalog. The artifact becomes visible atomically; a crash mid-write leaves
// no entry behind.
func (m *Manager) Write(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat, data []byte) error {
	if m == nil {
		return errors.New("framecache: cache disabled")
	}
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("framecache: ensure root: %w", err)
	}

	dest := m.Path(fp, format)
	tmp, err := os.CreateTemp(m.root, ".partial-*")
	if err != nil {
		return fmt.Errorf("framecache: create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("framecache: write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("framecache: close artifact: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("framecache: publish artifact: %w", err)
	}

	entry := catalog.Entry{
		Fingerprint: fp,
		Format:      format,
		RelPath:     ArtifactName(fp, format),
		SizeBytes:   int64(len(data)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.index.Put(ctx, entry); err != nil {
		// Keep disk and catalog consistent: an unindexed artifact would
		// never be pruned or found.
		_ = os.Remove(dest)
		return fmt.Errorf("framecache: index artifact: %w", err)
	}

	m.logger.DebugContext(ctx, "stored frame",
		logging.String(logging.FieldFingerprint, fp.String()),
		logging.String("pixel_format", format.String()),
		logging.Int("size_bytes", len(data)),
	)
	return nil
}

// Remove is the explicit invalidation hook: it deletes the artifact and its
// catalog row. Removing an absent entry is not an error.
func (m *Manager) Remove(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat) error {
	if m == nil {
		return nil
	}
	if err := os.Remove(m.Path(fp, format)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("framecache: remove artifact: %w", err)
	}
	return m.index.Remove(ctx, fp, format)
}

// Stats returns current cache usage and filesystem free-space info.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if m == nil {
		return s, nil
	}
	entries, err := m.index.List(ctx)
	if err != nil {
		return s, err
	}
	var total int64
	for _, entry := range entries {
		total += entry.SizeBytes
	}
	totalFS, freeFS, err := m.statfs(m.root)
	if err != nil {
		return s, fmt.Errorf("framecache: statfs: %w", err)
	}
	ratio := 1.0
	if totalFS > 0 {
		ratio = float64(freeFS) / float64(totalFS)
	}
	return Stats{
		Entries:      len(entries),
		TotalBytes:   total,
		MaxBytes:     m.maxBytes,
		FreeBytes:    freeFS,
		TotalFSBytes: totalFS,
		FreeRatio:    ratio,
	}, nil
}

// Prune removes oldest entries until both the size budget and the free-space
// floor are satisfied. A file lock on the cache root keeps concurrent
// maintenance runs (CLI vs daemon) from deleting past each other.
func (m *Manager) Prune(ctx context.Context) error {
	if m == nil {
		return nil
	}
	if err := m.withMaintenanceLock(func() error { return m.prune(ctx) }); err != nil {
		return err
	}
	return nil
}

// Clear removes every artifact and catalog entry.
func (m *Manager) Clear(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.withMaintenanceLock(func() error {
		entries, err := m.index.List(ctx)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			path := filepath.Join(m.root, entry.RelPath)
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("framecache: remove %q: %w", path, err)
			}
		}
		return m.index.Clear(ctx)
	})
}

func (m *Manager) withMaintenanceLock(op func() error) error {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("framecache: ensure root: %w", err)
	}
	ok, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("framecache: acquire maintenance lock: %w", err)
	}
	if !ok {
		return errors.New("framecache: maintenance already running")
	}
	defer func() { _ = m.lock.Unlock() }()
	return op()
}

func (m *Manager) prune(ctx context.Context) error {
	entries, err := m.index.List(ctx)
	if err != nil {
		return err
	}
	var total int64
	for _, entry := range entries {
		total += entry.SizeBytes
	}

	for len(entries) > 0 {
		freeOK, err := m.freeSpaceOK()
		if err != nil {
			return err
		}
		if total <= m.maxBytes && freeOK {
			return nil
		}
		oldest := entries[0]
		path := filepath.Join(m.root, oldest.RelPath)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("framecache: remove %q: %w", path, err)
		}
		if err := m.index.Remove(ctx, oldest.Fingerprint, oldest.Format); err != nil {
			return err
		}
		m.logger.InfoContext(ctx, "pruned frame",
			logging.String(logging.FieldFingerprint, oldest.Fingerprint.String()),
			logging.Int64("entry_size_bytes", oldest.SizeBytes),
		)
		total -= oldest.SizeBytes
		entries = entries[1:]
	}
	return nil
}

func (m *Manager) freeSpaceOK() (bool, error) {
	total, free, err := m.statfs(m.root)
	if err != nil {
		return false, fmt.Errorf("framecache: statfs: %w", err)
	}
	if total == 0 {
		return true, nil
	}
	return float64(free)/float64(total) >= freeSpaceFloor, nil
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
