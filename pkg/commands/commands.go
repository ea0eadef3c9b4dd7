// Package commands provides the hostsub command implementations.
//
// This package contains the orchestration layer between the CLI and the
// transaction coordinator. Each command lives in its own subdirectory:
//   - subscribe/   - Subscribe command
//   - unsubscribe/ - Unsubscribe command
//   - update/      - Update command
//   - list/        - List command
//   - backup/      - Backup and ListBackups commands
//   - restore/     - Restore command
//   - internal/    - Download, validation and preview shared by subscribe and update
//
// This file re-exports the command functions so callers need one import.
package commands

import (
	"github.com/arthur-debert/hostsub/pkg/commands/backup"
	"github.com/arthur-debert/hostsub/pkg/commands/list"
	"github.com/arthur-debert/hostsub/pkg/commands/restore"
	"github.com/arthur-debert/hostsub/pkg/commands/subscribe"
	"github.com/arthur-debert/hostsub/pkg/commands/unsubscribe"
	"github.com/arthur-debert/hostsub/pkg/commands/update"
	"github.com/arthur-debert/hostsub/pkg/types"
)

// Re-export all command types and functions

// Subscribe merges a remote hosts list into the hosts file.
type SubscribeOptions = subscribe.SubscribeOptions

func Subscribe(opts SubscribeOptions) (*types.SubscribeResult, error) {
	return subscribe.Subscribe(opts)
}

// Unsubscribe removes a subscription block and its registry entry.
type UnsubscribeOptions = unsubscribe.UnsubscribeOptions

func Unsubscribe(opts UnsubscribeOptions) (*types.UnsubscribeResult, error) {
	return unsubscribe.Unsubscribe(opts)
}

// Update refreshes every subscription.
type UpdateOptions = update.UpdateOptions

func Update(opts UpdateOptions) (*types.UpdateResult, error) {
	return update.Update(opts)
}

// List compares the registry with the hosts file.
type ListOptions = list.ListOptions

func List(opts ListOptions) (*types.ListResult, error) {
	return list.List(opts)
}

// Backup snapshots the hosts file.
type BackupOptions = backup.BackupOptions

func Backup(opts BackupOptions) (*types.BackupResult, error) {
	return backup.Backup(opts)
}

// RecentLimit is how many snapshots Backup reports.
const RecentLimit = backup.RecentLimit

// ListBackups lists snapshots, newest first.
type ListBackupsOptions = backup.ListBackupsOptions

func ListBackups(opts ListBackupsOptions) (*types.ListBackupsResult, error) {
	return backup.ListBackups(opts)
}

// Restore replaces the hosts file with a snapshot.
type RestoreOptions = restore.RestoreOptions

func Restore(opts RestoreOptions) (*types.RestoreResult, error) {
	return restore.Restore(opts)
}
