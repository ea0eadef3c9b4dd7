// pkg/commands/backup/backup_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: testenv (memory FS)
// PURPOSE: Manual snapshots and the newest-first listing

package backup_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/hostsub/pkg/commands/backup"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/testutil"
	"github.com/arthur-debert/hostsub/pkg/testutil/testenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup(t *testing.T) {
	env := testenv.New(t, testenv.MemoryOnly)

	result, err := backup.Backup(backup.BackupOptions{Env: env.Environment})
	require.NoError(t, err)

	assert.Equal(t, "hosts_backup_1700000000.txt", result.Snapshot.Name)
	assert.Equal(t, int64(len(testenv.DefaultHosts)), result.Snapshot.Size)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Recent, 1)

	content, err := env.Store.Restore(result.Snapshot.Name)
	require.NoError(t, err)
	assert.Equal(t, testenv.DefaultHosts, content)
	assert.Equal(t, testenv.DefaultHosts, env.ReadHosts())
}

func TestBackup_RecentIsCappedNewestFirst(t *testing.T) {
	env := testenv.New(t, testenv.MemoryOnly)

	var last string
	for i := 0; i < 12; i++ {
		result, err := backup.Backup(backup.BackupOptions{Env: env.Environment})
		require.NoError(t, err)
		last = result.Snapshot.Name
		env.Advance(time.Second)
	}

	result, err := backup.ListBackups(backup.ListBackupsOptions{Env: env.Environment})
	require.NoError(t, err)
	assert.Equal(t, 12, result.Total)
	assert.Len(t, result.Snapshots, 12)
	assert.Equal(t, last, result.Snapshots[0].Name)

	created, err := backup.Backup(backup.BackupOptions{Env: env.Environment})
	require.NoError(t, err)
	assert.Equal(t, 13, created.Total)
	assert.Len(t, created.Recent, backup.RecentLimit)
	assert.Equal(t, created.Snapshot.Name, created.Recent[0].Name)
	for i := 1; i < len(created.Recent); i++ {
		assert.True(t, created.Recent[i-1].Time.After(created.Recent[i].Time))
	}
}

func TestListBackups_Limit(t *testing.T) {
	env := testenv.New(t, testenv.MemoryOnly)
	for i := 0; i < 5; i++ {
		_, err := backup.Backup(backup.BackupOptions{Env: env.Environment})
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"no limit", 0, 5},
		{"under", 3, 3},
		{"over", 50, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := backup.ListBackups(backup.ListBackupsOptions{Env: env.Environment, Limit: tt.limit})
			require.NoError(t, err)
			assert.Len(t, result.Snapshots, tt.want)
			assert.Equal(t, 5, result.Total)
			assert.Equal(t, env.Store.Dir(), result.Dir)
		})
	}
}

func TestListBackups_Empty(t *testing.T) {
	env := testenv.New(t, testenv.MemoryOnly)

	result, err := backup.ListBackups(backup.ListBackupsOptions{Env: env.Environment})
	require.NoError(t, err)
	assert.Empty(t, result.Snapshots)
	assert.Equal(t, 0, result.Total)
}

func TestBackup_Failure(t *testing.T) {
	env := testenv.New(t, testenv.MemoryOnly)
	env.Failing.FailOn(testutil.OpWriteFile, "hosts_backup_")

	_, err := backup.Backup(backup.BackupOptions{Env: env.Environment})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupFailed))
}
