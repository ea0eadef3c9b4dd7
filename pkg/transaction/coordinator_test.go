// pkg/transaction/coordinator_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory filesystem, FailingFS
// PURPOSE: Backup, commit, rollback and desync paths of a transaction

package transaction

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/hostsub/pkg/backup"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/filesystem"
	"github.com/arthur-debert/hostsub/pkg/hostsfile"
	"github.com/arthur-debert/hostsub/pkg/testutil"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	hostsPath  = "/etc/hosts"
	backupDir  = "/data/backups/hosts"
	intentPath = "/state/intent.toml"
	original   = "127.0.0.1 localhost\n"
	subURL     = "https://example.com/hosts"
	subContent = "1.2.3.4 example.test\n# comment\n"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	mem   types.FS
	fs    *testutil.FailingFS
	store *backup.Store
	coord *Coordinator
}

func newFixture(t *testing.T, content string) *fixture {
	t.Helper()
	mem := filesystem.NewMemory()
	require.NoError(t, mem.MkdirAll("/etc", 0755))
	require.NoError(t, mem.WriteFile(hostsPath, []byte(content), 0644))

	failing := testutil.NewFailingFS(mem)
	now := func() time.Time { return time.Unix(1700000000, 0) }
	store := backup.NewStore(failing, backupDir, backup.WithClock(now))
	coord := New(failing, store, Options{
		HostsFile:  hostsPath,
		IntentFile: intentPath,
		Locker:     NopLocker{},
		Now:        now,
	})
	return &fixture{mem: mem, fs: failing, store: store, coord: coord}
}

func (f *fixture) hosts(t *testing.T) string {
	t.Helper()
	data, err := f.mem.ReadFile(hostsPath)
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) intent(t *testing.T) *Intent {
	t.Helper()
	intent, err := f.coord.Pending()
	require.NoError(t, err)
	return intent
}

func subscribe(url, content string) func(doc *hostsfile.Document) (bool, error) {
	return func(doc *hostsfile.Document) (bool, error) {
		doc.AddOrUpdateSubscription(url, content, time.Unix(1700000000, 0))
		return true, nil
	}
}

func TestApply_Commits(t *testing.T) {
	f := newFixture(t, original)
	finalized := false

	result, err := f.coord.Apply(Operation{
		Name:     "subscribe",
		URL:      subURL,
		Mutate:   subscribe(subURL, subContent),
		Finalize: func() error { finalized = true; return nil },
	})
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, result.State)
	assert.True(t, result.Changed)
	assert.True(t, finalized)
	assert.NotEmpty(t, result.ID)

	doc := hostsfile.Parse(f.hosts(t))
	assert.Equal(t, []string{"1.2.3.4 example.test"}, doc.Entries(subURL))

	saved, err := f.store.Restore(result.Snapshot.Name)
	require.NoError(t, err)
	assert.Equal(t, original, saved, "snapshot holds the pre-operation content")
	assert.Nil(t, f.intent(t), "intent cleared after commit")
}

func TestApply_FinalizeFailureRollsBack(t *testing.T) {
	f := newFixture(t, original)
	persistErr := errors.New(errors.ErrRegistryPersist, "disk full")

	result, err := f.coord.Apply(Operation{
		Name:     "subscribe",
		URL:      subURL,
		Mutate:   subscribe(subURL, subContent),
		Finalize: func() error { return persistErr },
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRegistryPersist))
	assert.False(t, errors.IsSevere(err))
	assert.Equal(t, StateRolledBack, result.State)

	assert.Equal(t, original, f.hosts(t), "file content equals its content before the operation")
	saved, err := f.store.Restore(result.Snapshot.Name)
	require.NoError(t, err)
	assert.Equal(t, original, saved)
	assert.Nil(t, f.intent(t))
}

func TestApply_RollbackFailureIsDesync(t *testing.T) {
	f := newFixture(t, original)
	// The commit rename succeeds, the rollback rename fails.
	f.fs.FailAfter(testutil.OpRename, hostsPath, 1)

	result, err := f.coord.Apply(Operation{
		Name:     "subscribe",
		URL:      subURL,
		Mutate:   subscribe(subURL, subContent),
		Finalize: func() error { return errors.New(errors.ErrRegistryPersist, "disk full") },
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRegistryDesync))
	assert.True(t, errors.IsSevere(err))
	assert.Equal(t, result.Snapshot.Name, errors.GetErrorDetails(err)["snapshot"])
	assert.Contains(t, err.Error(), "disk full")

	assert.NotEqual(t, original, f.hosts(t), "file still holds the committed content")
	pending := f.intent(t)
	require.NotNil(t, pending, "intent kept for recovery")
	assert.Equal(t, PhaseCommitted, pending.Phase)

	// Next run recovers before doing anything else
	f.fs.Reset()
	_, err = f.coord.Apply(Operation{
		Name:   "noop",
		Mutate: func(*hostsfile.Document) (bool, error) { return false, nil },
	})
	require.NoError(t, err)
	assert.Equal(t, original, f.hosts(t))
	assert.Nil(t, f.intent(t))
}

func TestApply_CommitFailureLeavesFileUntouched(t *testing.T) {
	f := newFixture(t, original)
	f.fs.FailOn(testutil.OpRename, hostsPath)
	finalized := false

	result, err := f.coord.Apply(Operation{
		Name:     "subscribe",
		Mutate:   subscribe(subURL, subContent),
		Finalize: func() error { finalized = true; return nil },
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
	assert.False(t, errors.IsSevere(err))
	assert.Equal(t, StateRolledBack, result.State)
	assert.False(t, finalized, "registry untouched when the file was not written")
	assert.Equal(t, original, f.hosts(t))
	assert.Nil(t, f.intent(t))
}

func TestApply_BackupFailureAborts(t *testing.T) {
	f := newFixture(t, original)
	f.fs.FailOn(testutil.OpWriteFile, "hosts_backup_")
	mutated := false

	result, err := f.coord.Apply(Operation{
		Name: "subscribe",
		Mutate: func(doc *hostsfile.Document) (bool, error) {
			mutated = true
			return true, nil
		},
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupFailed))
	assert.Equal(t, StateAborted, result.State)
	assert.False(t, mutated)
	assert.Equal(t, original, f.hosts(t))
	assert.Equal(t, 0, f.fs.Calls(testutil.OpRename))
}

func TestApply_MutationError(t *testing.T) {
	f := newFixture(t, original)
	wantErr := fmt.Errorf("bad input")

	result, err := f.coord.Apply(Operation{
		Name:   "subscribe",
		Mutate: func(*hostsfile.Document) (bool, error) { return false, wantErr },
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, StateRolledBack, result.State)
	assert.Equal(t, original, f.hosts(t))
	assert.Equal(t, 0, f.fs.Calls(testutil.OpRename))
}

func TestApply_UnchangedSkipsCommit(t *testing.T) {
	f := newFixture(t, original)
	// Any attempt to replace the hosts file would fail the operation
	f.fs.FailOn(testutil.OpRename, hostsPath)
	finalized := false

	result, err := f.coord.Apply(Operation{
		Name:     "unsubscribe",
		Mutate:   func(doc *hostsfile.Document) (bool, error) { return doc.RemoveSubscription(subURL), nil },
		Finalize: func() error { finalized = true; return nil },
	})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.True(t, finalized, "downstream store still updated")
	assert.Equal(t, original, f.hosts(t))

	assert.False(t, f.fs.Failed(testutil.OpRename), "hosts file was not rewritten")
	snaps, err := f.store.List()
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestApply_UnchangedFinalizeFailure(t *testing.T) {
	f := newFixture(t, original)

	result, err := f.coord.Apply(Operation{
		Name:     "unsubscribe",
		Mutate:   func(*hostsfile.Document) (bool, error) { return false, nil },
		Finalize: func() error { return errors.New(errors.ErrRegistryPersist, "read-only") },
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRegistryPersist))
	assert.Equal(t, StateRolledBack, result.State)
	assert.Equal(t, original, f.hosts(t))
}

func TestApply_MissingHostsFile(t *testing.T) {
	f := newFixture(t, original)
	require.NoError(t, f.mem.Remove(hostsPath))

	result, err := f.coord.Apply(Operation{Name: "subscribe", Mutate: subscribe(subURL, subContent)})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
	assert.Equal(t, StateAborted, result.State)
}

func TestApply_RequiresMutation(t *testing.T) {
	f := newFixture(t, original)
	_, err := f.coord.Apply(Operation{Name: "nothing"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestApply_PrunesAfterCommit(t *testing.T) {
	f := newFixture(t, original)
	clock := int64(1700000000)
	f.store = backup.NewStore(f.fs, backupDir, backup.WithClock(func() time.Time {
		clock++
		return time.Unix(clock, 0)
	}))
	f.coord = New(f.fs, f.store, Options{
		HostsFile:  hostsPath,
		IntentFile: intentPath,
		Locker:     NopLocker{},
		Retain:     3,
	})

	var pruned int
	for i := 0; i < 5; i++ {
		result, err := f.coord.Apply(Operation{
			Name:   "update",
			Mutate: subscribe(subURL, fmt.Sprintf("1.2.3.%d example.test", i)),
		})
		require.NoError(t, err)
		pruned += result.Pruned
	}

	snaps, err := f.store.List()
	require.NoError(t, err)
	assert.Len(t, snaps, 3)
	assert.Equal(t, 2, pruned)
}

func TestRestore(t *testing.T) {
	f := newFixture(t, original)

	first, err := f.coord.Apply(Operation{Name: "subscribe", Mutate: subscribe(subURL, subContent)})
	require.NoError(t, err)
	subscribed := f.hosts(t)

	result, err := f.coord.Restore(first.Snapshot.Name)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, result.State)
	assert.Equal(t, original, f.hosts(t))

	// The restore was itself backed up
	undo, err := f.store.Restore(result.Snapshot.Name)
	require.NoError(t, err)
	assert.Equal(t, subscribed, undo)
}

func TestRestore_NotFound(t *testing.T) {
	f := newFixture(t, original)

	_, err := f.coord.Restore("hosts_backup_1.txt")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupNotFound))
	assert.Equal(t, original, f.hosts(t))
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t, original)

	snap, err := f.coord.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, "hosts_backup_1700000000.txt"), snap.Path)

	content, err := f.store.Restore(snap.Name)
	require.NoError(t, err)
	assert.Equal(t, original, content)
}

func TestDocument(t *testing.T) {
	f := newFixture(t, original)
	_, err := f.coord.Apply(Operation{Name: "subscribe", Mutate: subscribe(subURL, subContent)})
	require.NoError(t, err)

	doc, err := f.coord.Document()
	require.NoError(t, err)
	assert.Equal(t, []string{subURL}, doc.URLs())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, "rolled-back", StateRolledBack.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "unknown", State(42).String())
}
