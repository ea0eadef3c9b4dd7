package transaction

import (
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/internal/hashutil"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/rs/zerolog"
)

// Pending returns the intent left by an interrupted transaction, if any.
func (c *Coordinator) Pending() (*Intent, error) {
	return c.journal.load()
}

// recover resolves an intent left by an interrupted process. The file is
// only rewritten when it provably still holds what that process wrote.
func (c *Coordinator) recover() error {
	logger := logging.GetLogger("transaction")

	intent, err := c.journal.load()
	if err != nil {
		return err
	}
	if intent == nil {
		return nil
	}

	logger = logger.With().
		Str("tx", intent.ID).
		Str("operation", intent.Operation).
		Str("phase", string(intent.Phase)).
		Logger()

	if intent.Target != c.opts.HostsFile {
		return errors.Newf(errors.ErrRegistryDesync,
			"an interrupted %s on %s is pending; run hostsub against that file or remove %s after checking it",
			intent.Operation, intent.Target, c.opts.IntentFile).
			WithDetail("intent", c.opts.IntentFile)
	}

	if intent.Phase == PhaseFinalized {
		logger.Info().Msg("Clearing finished transaction record")
		return c.journal.clear()
	}

	sum, err := hashutil.FileChecksum(c.fs, c.opts.HostsFile)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s for recovery", c.opts.HostsFile)
	}

	switch {
	case sum == intent.Before:
		logger.Info().Msg("Interrupted transaction never changed the hosts file")
		return c.journal.clear()

	case sum == intent.After:
		return c.recoverWritten(logger, intent)

	default:
		return errors.Newf(errors.ErrRegistryDesync,
			"%s changed since an interrupted %s; compare it with backup %s, then remove %s",
			c.opts.HostsFile, intent.Operation, intent.Snapshot, c.opts.IntentFile).
			WithDetail("snapshot", intent.Snapshot).
			WithDetail("intent", c.opts.IntentFile)
	}
}

// recoverWritten resolves an intent whose new content reached the file. The
// registry decides: if it already holds the change the file is kept,
// otherwise the snapshot goes back.
func (c *Coordinator) recoverWritten(logger zerolog.Logger, intent *Intent) error {
	if intent.Downstream {
		switch {
		case c.opts.Settled != nil:
			settled, err := c.opts.Settled(intent)
			if err != nil {
				return errors.Wrapf(err, errors.ErrRegistryDesync,
					"failed to check the registry for an interrupted %s of %s", intent.Operation, intent.URL).
					WithDetail("intent", c.opts.IntentFile)
			}
			if settled {
				logger.Info().Str("url", intent.URL).Msg("Interrupted transaction had finished, keeping hosts file")
				return c.journal.clear()
			}

		case intent.Phase == PhaseCommitted:
			// The registry may or may not have been updated.
			return errors.Newf(errors.ErrRegistryDesync,
				"an interrupted %s of %s may have updated the registry; check 'hostsub list', then remove %s",
				intent.Operation, intent.URL, c.opts.IntentFile).
				WithDetail("snapshot", intent.Snapshot).
				WithDetail("intent", c.opts.IntentFile)
		}
	}

	logger.Warn().
		Str("snapshot", intent.Snapshot).
		Str("url", intent.URL).
		Msg("Rolling back interrupted transaction")
	if err := c.restoreSnapshot(intent.Snapshot); err != nil {
		return errors.Wrapf(err, errors.ErrRegistryDesync,
			"failed to roll back interrupted %s from %s", intent.Operation, intent.Snapshot).
			WithDetail("snapshot", intent.Snapshot)
	}
	return c.journal.clear()
}
