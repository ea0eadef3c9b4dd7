package transaction

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/hostsub/pkg/atomicfile"
	"github.com/arthur-debert/hostsub/pkg/backup"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/hostsfile"
	"github.com/arthur-debert/hostsub/pkg/internal/hashutil"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/paths"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultLockTimeout bounds how long a transaction waits for another one.
const DefaultLockTimeout = 10 * time.Second

// Operation is one logical change to the hosts file.
type Operation struct {
	// Name labels the change in logs and the intent record
	Name string

	// URL is the subscription concerned, if any
	URL string

	// Mutate edits the parsed document in memory and reports whether
	// anything changed. It must not touch the disk.
	Mutate func(doc *hostsfile.Document) (changed bool, err error)

	// Finalize updates the downstream store once the file is committed.
	// An error rolls the file back.
	Finalize func() error
}

// Result describes a finished transaction.
type Result struct {
	ID       string
	State    State
	Snapshot backup.Snapshot
	Changed  bool
	Pruned   int
}

// Options configures a Coordinator.
type Options struct {
	// HostsFile is the managed file
	HostsFile string

	// IntentFile records in-flight transactions
	IntentFile string

	// Locker serializes transactions, a FileLocker in the backup
	// directory when nil
	Locker Locker

	// LockTimeout bounds the wait for the lock
	LockTimeout time.Duration

	// Retain is how many snapshots survive pruning, 0 keeps all
	Retain int

	// Now replaces time.Now, for tests
	Now func() time.Time

	// Settled reports whether the registry already reflects an interrupted
	// transaction whose file change was written. Recovery keeps the file
	// when it does and rolls it back when it does not. Without it, such an
	// intent in phase committed is reported as a desync.
	Settled func(intent *Intent) (bool, error)
}

// Coordinator runs transactions against one hosts file.
type Coordinator struct {
	fs      types.FS
	store   *backup.Store
	writer  *atomicfile.Writer
	journal *journal
	opts    Options
}

// New returns a Coordinator writing through fsys and snapshotting to store.
func New(fsys types.FS, store *backup.Store, opts Options) *Coordinator {
	if opts.Locker == nil {
		opts.Locker = NewFileLocker(filepath.Join(store.Dir(), paths.LockFileName))
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IntentFile == "" {
		opts.IntentFile = filepath.Join(store.Dir(), "intent.toml")
	}
	return &Coordinator{
		fs:      fsys,
		store:   store,
		writer:  atomicfile.New(fsys),
		journal: newJournal(fsys, opts.IntentFile),
		opts:    opts,
	}
}

// HostsFile returns the managed file.
func (c *Coordinator) HostsFile() string {
	return c.opts.HostsFile
}

// Document parses the current hosts file without locking.
func (c *Coordinator) Document() (*hostsfile.Document, error) {
	content, err := c.read()
	if err != nil {
		return nil, err
	}
	return hostsfile.Parse(content), nil
}

// Apply runs op: backup, mutate, commit, finalize, and roll back the file
// when commit or finalize fails.
func (c *Coordinator) Apply(op Operation) (*Result, error) {
	if op.Mutate == nil {
		return nil, errors.New(errors.ErrInvalidInput, "operation has no mutation")
	}
	return c.run(op.Name, op.URL, func(current string) (string, bool, error) {
		doc := hostsfile.Parse(current)
		changed, err := op.Mutate(doc)
		if err != nil {
			return "", false, err
		}
		if !changed {
			return current, false, nil
		}
		return doc.Serialize(), true, nil
	}, op.Finalize)
}

// Restore replaces the hosts file with a snapshot. The current content is
// backed up first, so a restore can itself be undone.
func (c *Coordinator) Restore(snapshotID string) (*Result, error) {
	content, err := c.store.Restore(snapshotID)
	if err != nil {
		return nil, err
	}
	return c.run("restore", "", func(current string) (string, bool, error) {
		return content, content != current, nil
	}, nil)
}

// Snapshot backs up the current hosts file.
func (c *Coordinator) Snapshot() (backup.Snapshot, error) {
	unlock, err := c.opts.Locker.Lock(c.opts.LockTimeout)
	if err != nil {
		return backup.Snapshot{}, err
	}
	defer unlock()

	content, err := c.read()
	if err != nil {
		return backup.Snapshot{}, err
	}
	snap, err := c.store.Backup(content)
	if err != nil {
		return backup.Snapshot{}, errors.Wrap(err, errors.ErrBackupFailed, "failed to back up hosts file")
	}
	return snap, nil
}

type transform func(current string) (next string, changed bool, err error)

func (c *Coordinator) run(name, url string, apply transform, finalize func() error) (*Result, error) {
	logger := logging.GetLogger("transaction").With().
		Str("operation", name).
		Str("target", c.opts.HostsFile).
		Logger()
	done := logging.LogOperationStart(logger, name)
	defer done()

	unlock, err := c.opts.Locker.Lock(c.opts.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := c.recover(); err != nil {
		return nil, err
	}

	result := &Result{ID: uuid.NewString(), State: StateStart}
	logger = logger.With().Str("tx", result.ID).Logger()

	current, err := c.read()
	if err != nil {
		result.State = StateAborted
		return result, err
	}

	// BackedUp: without a snapshot there is nothing to roll back to, so
	// nothing may be written.
	snap, err := c.store.Backup(current)
	if err != nil {
		result.State = StateAborted
		logger.Error().Err(err).Msg("Backup failed, hosts file left untouched")
		return result, errors.Wrap(err, errors.ErrBackupFailed, "failed to back up hosts file, no changes made")
	}
	result.Snapshot = snap
	result.State = StateBackedUp
	logger.Debug().Str("snapshot", snap.Name).Msg("Backed up")

	// Applied
	next, changed, err := apply(current)
	if err != nil {
		result.State = StateRolledBack
		logger.Debug().Err(err).Msg("Mutation failed, nothing written")
		return result, err
	}
	result.State = StateApplied
	result.Changed = changed

	intent := &Intent{
		ID:        result.ID,
		Operation: name,
		URL:       url,
		Target:    c.opts.HostsFile,
		Snapshot:  snap.Name,
		Phase:     PhaseBackedUp,
		Before:    hashutil.ChecksumString(current),
		After:     hashutil.ChecksumString(next),
		Started:   c.opts.Now().UTC(),

		Downstream: finalize != nil,
	}
	if err := c.journal.save(intent); err != nil {
		result.State = StateRolledBack
		return result, err
	}

	// Commit
	if changed {
		if err := c.writer.WriteString(c.opts.HostsFile, next); err != nil {
			logger.Error().Err(err).Msg("Commit failed")
			return result, c.rollbackAfterCommitFailure(logger, result, intent, err)
		}
		logger.Info().Msg("Hosts file committed")
	} else {
		logger.Debug().Msg("No change to the hosts file")
	}
	intent.Phase = PhaseCommitted
	if err := c.journal.save(intent); err != nil {
		logger.Warn().Err(err).Msg("Failed to record commit in intent")
	}

	// Finalize
	if finalize != nil {
		if err := finalize(); err != nil {
			logger.Error().Err(err).Msg("Finalize failed, rolling back hosts file")
			return result, c.rollbackAfterFinalizeFailure(logger, result, intent, err)
		}
	}

	result.State = StateCommitted
	intent.Phase = PhaseFinalized
	if err := c.journal.save(intent); err != nil {
		logger.Warn().Err(err).Msg("Failed to record finalize in intent")
	}
	c.clearIntent(logger)

	if pruned, err := c.store.Prune(c.opts.Retain); err != nil {
		logger.Warn().Err(err).Msg("Failed to prune old backups")
	} else {
		result.Pruned = len(pruned)
	}

	return result, nil
}

// rollbackAfterCommitFailure only rewrites the file when the failed commit
// left it different from what was backed up.
func (c *Coordinator) rollbackAfterCommitFailure(logger zerolog.Logger, result *Result, intent *Intent, cause error) error {
	if sum, err := hashutil.FileChecksum(c.fs, c.opts.HostsFile); err == nil && sum == intent.Before {
		result.State = StateRolledBack
		c.clearIntent(logger)
		return cause
	}

	if err := c.restoreSnapshot(intent.Snapshot); err != nil {
		logger.Error().Err(err).Str("snapshot", intent.Snapshot).Msg("Rollback failed")
		return errors.Wrapf(err, errors.ErrRollbackFailed,
			"commit failed (%v) and restoring %s failed too; restore it manually", cause, intent.Snapshot).
			WithDetail("snapshot", intent.Snapshot)
	}
	result.State = StateRolledBack
	c.clearIntent(logger)
	logger.Info().Str("snapshot", intent.Snapshot).Msg("Rolled back")
	return cause
}

func (c *Coordinator) rollbackAfterFinalizeFailure(logger zerolog.Logger, result *Result, intent *Intent, cause error) error {
	if !result.Changed {
		result.State = StateRolledBack
		c.clearIntent(logger)
		return cause
	}

	if err := c.restoreSnapshot(intent.Snapshot); err != nil {
		// The intent stays behind so the next run retries the restore.
		logger.Error().
			Err(err).
			AnErr("cause", cause).
			Str("snapshot", intent.Snapshot).
			Str("url", intent.URL).
			Msg("Rollback failed, hosts file and registry disagree")
		return errors.Wrapf(err, errors.ErrRegistryDesync,
			"registry update failed (%v) and the hosts file could not be restored from %s", cause, intent.Snapshot).
			WithDetail("snapshot", intent.Snapshot).
			WithDetail("url", intent.URL)
	}

	result.State = StateRolledBack
	c.clearIntent(logger)
	logger.Info().Str("snapshot", intent.Snapshot).Msg("Rolled back")
	return cause
}

func (c *Coordinator) restoreSnapshot(name string) error {
	content, err := c.store.Restore(name)
	if err != nil {
		return err
	}
	return c.writer.WriteString(c.opts.HostsFile, content)
}

func (c *Coordinator) clearIntent(logger zerolog.Logger) {
	if err := c.journal.clear(); err != nil {
		logger.Warn().Err(err).Msg("Failed to clear intent")
	}
}

func (c *Coordinator) read() (string, error) {
	data, err := c.fs.ReadFile(c.opts.HostsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(err, errors.ErrFileNotFound, "hosts file %s not found", c.opts.HostsFile)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", c.opts.HostsFile)
	}
	return string(data), nil
}
