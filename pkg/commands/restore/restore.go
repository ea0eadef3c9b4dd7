package restore

import (
	"strings"

	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/types"
)

// RestoreOptions defines the options for the Restore command.
type RestoreOptions struct {
	Env *core.Environment

	// Snapshot is a snapshot name or a path inside the backup directory
	Snapshot string
}

// Restore replaces the hosts file with a snapshot. The content being
// replaced is backed up first. The registry is left alone: list shows any
// disagreement the restore introduces.
func Restore(opts RestoreOptions) (*types.RestoreResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "Restore").Str("snapshot", opts.Snapshot).Msg("Executing command")

	env := opts.Env
	id := strings.TrimSpace(opts.Snapshot)
	if id == "" {
		return nil, errors.New(errors.ErrInvalidInput, "specify the backup to restore, see 'hostsub backups'")
	}

	if err := env.Privilege.EnsureElevated(); err != nil {
		return nil, err
	}

	snap, err := env.Store.Get(id)
	if err != nil {
		return nil, err
	}

	tx, err := env.Coordinator.Restore(snap.Name)
	if err != nil {
		return nil, err
	}

	result := &types.RestoreResult{
		Restored: snap.Info(),
		Safety:   tx.Snapshot.Info(),
		Changed:  tx.Changed,
	}

	log.Info().
		Str("command", "Restore").
		Str("snapshot", snap.Name).
		Bool("changed", tx.Changed).
		Msg("Command finished")
	return result, nil
}
