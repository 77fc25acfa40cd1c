// Package backup snapshots configuration files before they are changed, and restores them.
//
// Snapshots are stored as <root>/<YYYYMMDD_HHMMSS>/<platform>_config.json with a sibling <platform>_metadata.json.
// Two snapshots of the same platform taken within the same second share a directory, and the later one wins.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/files"
	"github.com/ailevelup-ai/heal-mcp/internal/perms"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

// TimestampLayout names snapshot directories.
const TimestampLayout = "20060102_150405"

const (
	configSuffix   = "_config.json"
	metadataSuffix = "_metadata.json"
)

var (
	// ErrSnapshotIncomplete is returned when a snapshot directory lacks the config or metadata file for a platform.
	ErrSnapshotIncomplete = errors.New("snapshot is incomplete")

	// ErrSourceMissing is returned when asked to back up a file that does not exist.
	ErrSourceMissing = errors.New("file to back up does not exist")
)

// Metadata is the sidecar written next to each snapshot.
type Metadata struct {
	OriginalPath string `json:"original_path" yaml:"original_path"`
	BackupTime   string `json:"backup_time" yaml:"backup_time"`
	Platform     string `json:"platform" yaml:"platform"`
}

// Snapshot is a stored backup.
type Snapshot struct {
	Metadata

	// Dir is the timestamped directory holding the snapshot.
	Dir string `json:"dir" yaml:"dir"`
}

// ConfigPath returns the path of the copied configuration file.
func (s Snapshot) ConfigPath() string {
	return filepath.Join(s.Dir, s.Platform+configSuffix)
}

// Manager creates, lists and restores snapshots under a root directory.
type Manager struct {
	root   string
	opts   Options
	logger hclog.Logger
}

// NewManager returns a Manager which stores snapshots under root.
// The root directory is created on first use.
func NewManager(logger hclog.Logger, root string, opt ...Option) (*Manager, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("backup directory cannot be empty")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Manager{
		root:   root,
		opts:   opts,
		logger: logger.Named("backup"),
	}, nil
}

// Root returns the directory snapshots are stored under.
func (m *Manager) Root() string {
	return m.root
}

// Create copies the file at path into a new snapshot, returning the path of the copy.
func (m *Manager) Create(path string) (string, error) {
	if !files.Exists(path) {
		return "", fmt.Errorf("%w: %s", ErrSourceMissing, path)
	}

	stamp := m.opts.Now().Format(TimestampLayout)
	label := string(platform.Infer(path))
	dir := filepath.Join(m.root, stamp)

	// Existing directories are used as they are; only new ones get restricted permissions.
	if err := files.EnsureDir(m.root, perms.RegularDir); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := files.EnsureDir(dir, perms.SecureDir); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	dst := filepath.Join(dir, label+configSuffix)
	if err := files.CopyFile(path, dst); err != nil {
		return "", fmt.Errorf("failed to copy %s to snapshot: %w", path, err)
	}

	meta := Metadata{
		OriginalPath: path,
		BackupTime:   stamp,
		Platform:     label,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot metadata: %w", err)
	}
	if err := files.WriteFile(filepath.Join(dir, label+metadataSuffix), data, perms.RegularFile); err != nil {
		return "", fmt.Errorf("failed to write snapshot metadata: %w", err)
	}

	m.logger.Info("Created snapshot", "source", path, "snapshot", dst)

	return dst, nil
}

// List returns every readable snapshot, newest directory first.
// Sidecars which cannot be parsed are skipped.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	slices.Reverse(entries) // ReadDir sorts by name.

	var snapshots []Snapshot
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		dir := filepath.Join(m.root, e.Name())
		children, err := os.ReadDir(dir)
		if err != nil {
			m.logger.Debug("Skipping unreadable snapshot directory", "path", dir, "error", err)
			continue
		}

		for _, c := range children {
			if c.IsDir() || !strings.HasSuffix(c.Name(), metadataSuffix) {
				continue
			}

			sidecar := filepath.Join(dir, c.Name())
			meta, err := readMetadata(sidecar)
			if err != nil {
				m.logger.Debug("Skipping unreadable snapshot metadata", "path", sidecar, "error", err)
				continue
			}
			snapshots = append(snapshots, Snapshot{Metadata: meta, Dir: dir})
		}
	}

	return snapshots, nil
}

// Restore copies the snapshot for label in dir back over its original path.
// When the original path exists it is snapshotted first, and that snapshot's path is returned.
// An incomplete snapshot returns ErrSnapshotIncomplete without changing anything.
func (m *Manager) Restore(dir string, label string) (string, error) {
	configPath := filepath.Join(dir, label+configSuffix)
	metadataPath := filepath.Join(dir, label+metadataSuffix)

	if !files.Exists(configPath) || !files.Exists(metadataPath) {
		return "", fmt.Errorf("%w: %s (%s)", ErrSnapshotIncomplete, dir, label)
	}

	meta, err := readMetadata(metadataPath)
	if err != nil {
		return "", err
	}

	// Read before the pre-restore snapshot, which may reuse this directory.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot: %w", err)
	}
	info, err := os.Stat(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat snapshot: %w", err)
	}

	var current string
	if files.Exists(meta.OriginalPath) {
		current, err = m.Create(meta.OriginalPath)
		if err != nil {
			return "", fmt.Errorf("failed to back up current state: %w", err)
		}
	}

	if err := files.WriteFile(meta.OriginalPath, data, info.Mode().Perm()); err != nil {
		return current, fmt.Errorf("failed to restore %s: %w", meta.OriginalPath, err)
	}

	m.logger.Info("Restored snapshot", "snapshot", configPath, "target", meta.OriginalPath)

	return current, nil
}

func readMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read snapshot metadata: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var meta Metadata
	if err := dec.Decode(&meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to decode snapshot metadata (%s): %w", path, err)
	}

	if strings.TrimSpace(meta.OriginalPath) == "" || strings.TrimSpace(meta.Platform) == "" {
		return Metadata{}, fmt.Errorf("snapshot metadata is missing required fields (%s)", path)
	}

	return meta, nil
}
