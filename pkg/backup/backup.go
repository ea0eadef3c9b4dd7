// Package backup keeps timestamped, append-only snapshots of a file's
// content in a dedicated directory.
//
// Snapshots are named <prefix><unix-seconds><suffix>. A second snapshot in
// the same second gets <prefix><unix-seconds>-<n><suffix> instead of
// overwriting the first one.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/types"
)

// Default naming scheme
const (
	DefaultPrefix = "hosts_backup_"
	DefaultSuffix = ".txt"
)

// Snapshot identifies one backup file.
type Snapshot struct {
	Name      string
	Path      string
	Timestamp int64
	Seq       int
	Size      int64
}

// Time returns the snapshot creation time.
func (s Snapshot) Time() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// Info converts the snapshot to its display form.
func (s Snapshot) Info() types.SnapshotInfo {
	return types.SnapshotInfo{
		Name: s.Name,
		Path: s.Path,
		Size: s.Size,
		Time: s.Time(),
	}
}

func (s Snapshot) before(o Snapshot) bool {
	if s.Timestamp != o.Timestamp {
		return s.Timestamp < o.Timestamp
	}
	return s.Seq < o.Seq
}

// Store manages the snapshots of one backup directory.
type Store struct {
	fs     types.FS
	dir    string
	prefix string
	suffix string
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNaming overrides the file name prefix and suffix.
func WithNaming(prefix, suffix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
		s.suffix = suffix
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns a Store over dir. The directory is created on the first
// backup.
func NewStore(fsys types.FS, dir string, opts ...Option) *Store {
	s := &Store{
		fs:     fsys,
		dir:    dir,
		prefix: DefaultPrefix,
		suffix: DefaultSuffix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the backup directory.
func (s *Store) Dir() string {
	return s.dir
}

// Backup writes content to a new snapshot.
func (s *Store) Backup(content string) (Snapshot, error) {
	logger := logging.GetLogger("backup")

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return Snapshot{}, errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup directory %s", s.dir)
	}

	ts := s.now().Unix()
	snap := Snapshot{Timestamp: ts, Size: int64(len(content))}
	for {
		snap.Name = s.name(ts, snap.Seq)
		snap.Path = filepath.Join(s.dir, snap.Name)
		_, err := s.fs.Stat(snap.Path)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return Snapshot{}, errors.Wrapf(err, errors.ErrBackupFailed, "failed to check backup %s", snap.Path)
		}
		snap.Seq++
	}

	if err := s.fs.WriteFile(snap.Path, []byte(content), 0644); err != nil {
		return Snapshot{}, errors.Wrapf(err, errors.ErrBackupFailed, "failed to write backup %s", snap.Path)
	}

	logger.Info().
		Str("snapshot", snap.Name).
		Int64("size", snap.Size).
		Msg("Backup created")
	return snap, nil
}

// List returns all snapshots, oldest first. Files that do not follow the
// naming scheme are ignored. A missing directory is an empty store.
func (s *Store) List() ([]Snapshot, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read backup directory %s", s.dir)
	}

	var snaps []Snapshot
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		snap, ok := s.parseName(entry.Name())
		if !ok {
			continue
		}
		if info, err := entry.Info(); err == nil {
			snap.Size = info.Size()
		}
		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].before(snaps[j])
	})
	return snaps, nil
}

// Latest returns the newest snapshot.
func (s *Store) Latest() (Snapshot, error) {
	snaps, err := s.List()
	if err != nil {
		return Snapshot{}, err
	}
	if len(snaps) == 0 {
		return Snapshot{}, errors.Newf(errors.ErrBackupNotFound, "no backups in %s", s.dir)
	}
	return snaps[len(snaps)-1], nil
}

// Get resolves id to a snapshot. id is a snapshot name, or a path inside
// the backup directory.
func (s *Store) Get(id string) (Snapshot, error) {
	name := id
	if strings.ContainsRune(id, filepath.Separator) {
		if filepath.Clean(filepath.Dir(id)) != filepath.Clean(s.dir) {
			return Snapshot{}, errors.Newf(errors.ErrBackupNotFound, "%s is not in the backup directory %s", id, s.dir)
		}
		name = filepath.Base(id)
	}

	snap, ok := s.parseName(name)
	if !ok {
		return Snapshot{}, errors.Newf(errors.ErrBackupNotFound, "%s is not a backup name", id)
	}
	info, err := s.fs.Stat(snap.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.Newf(errors.ErrBackupNotFound, "backup %s not found", name).
				WithDetail("dir", s.dir)
		}
		return Snapshot{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat backup %s", snap.Path)
	}
	snap.Size = info.Size()
	return snap, nil
}

// Restore returns the content of a snapshot.
func (s *Store) Restore(id string) (string, error) {
	snap, err := s.Get(id)
	if err != nil {
		return "", err
	}
	data, err := s.fs.ReadFile(snap.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrBackupNotFound, "backup %s not found", snap.Name)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read backup %s", snap.Path)
	}
	return string(data), nil
}

// Prune deletes all but the newest keep snapshots and returns the deleted
// ones. keep <= 0 disables pruning.
func (s *Store) Prune(keep int) ([]Snapshot, error) {
	if keep <= 0 {
		return nil, nil
	}
	logger := logging.GetLogger("backup")

	snaps, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(snaps) <= keep {
		return nil, nil
	}

	var removed []Snapshot
	for _, snap := range snaps[:len(snaps)-keep] {
		if err := s.fs.Remove(snap.Path); err != nil {
			return removed, errors.Wrapf(err, errors.ErrFileWrite, "failed to remove old backup %s", snap.Path)
		}
		removed = append(removed, snap)
	}

	logger.Debug().Int("removed", len(removed)).Int("kept", keep).Msg("Pruned old backups")
	return removed, nil
}

func (s *Store) name(ts int64, seq int) string {
	if seq == 0 {
		return fmt.Sprintf("%s%d%s", s.prefix, ts, s.suffix)
	}
	return fmt.Sprintf("%s%d-%d%s", s.prefix, ts, seq, s.suffix)
}

func (s *Store) parseName(name string) (Snapshot, bool) {
	if !strings.HasPrefix(name, s.prefix) || !strings.HasSuffix(name, s.suffix) {
		return Snapshot{}, false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(name, s.prefix), s.suffix)

	tsPart, seqPart, hasSeq := strings.Cut(stem, "-")
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil || ts < 0 {
		return Snapshot{}, false
	}
	seq := 0
	if hasSeq {
		seq, err = strconv.Atoi(seqPart)
		if err != nil || seq < 1 {
			return Snapshot{}, false
		}
	}

	return Snapshot{
		Name:      name,
		Path:      filepath.Join(s.dir, name),
		Timestamp: ts,
		Seq:       seq,
	}, true
}
