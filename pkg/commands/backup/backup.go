package backup

import (
	"github.com/arthur-debert/hostsub/pkg/backup"
	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/types"
)

// RecentLimit is how many snapshots Backup reports after creating one.
const RecentLimit = 10

// BackupOptions defines the options for the Backup command.
type BackupOptions struct {
	Env *core.Environment
}

// Backup snapshots the hosts file as it is now.
func Backup(opts BackupOptions) (*types.BackupResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "Backup").Msg("Executing command")

	env := opts.Env
	snap, err := env.Coordinator.Snapshot()
	if err != nil {
		return nil, err
	}

	snaps, err := env.Store.List()
	if err != nil {
		return nil, err
	}

	result := &types.BackupResult{
		Snapshot: snap.Info(),
		Recent:   newest(snaps, RecentLimit),
		Total:    len(snaps),
	}

	log.Info().
		Str("command", "Backup").
		Str("snapshot", snap.Name).
		Int("total", result.Total).
		Msg("Command finished")
	return result, nil
}

// ListBackupsOptions defines the options for the ListBackups command.
type ListBackupsOptions struct {
	Env *core.Environment

	// Limit caps the number of snapshots returned, 0 returns all
	Limit int
}

// ListBackups returns the snapshots of the hosts file, newest first.
func ListBackups(opts ListBackupsOptions) (*types.ListBackupsResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "ListBackups").Msg("Executing command")

	env := opts.Env
	snaps, err := env.Store.List()
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = len(snaps)
	}
	result := &types.ListBackupsResult{
		Dir:       env.Store.Dir(),
		Snapshots: newest(snaps, limit),
		Total:     len(snaps),
	}

	log.Info().Str("command", "ListBackups").Int("total", result.Total).Msg("Command finished")
	return result, nil
}

// newest returns up to n snapshots from an oldest-first list, newest first.
func newest(snaps []backup.Snapshot, n int) []types.SnapshotInfo {
	if n > len(snaps) {
		n = len(snaps)
	}
	out := make([]types.SnapshotInfo, 0, n)
	for i := len(snaps) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, snaps[i].Info())
	}
	return out
}
