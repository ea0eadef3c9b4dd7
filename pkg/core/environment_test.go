// pkg/core/environment_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: testenv (memory FS, fake downloader, fake privilege)
// PURPOSE: Two environments over the same files, and recovery against the registry

package core_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/hostsub/pkg/commands/subscribe"
	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/hostsfile"
	"github.com/arthur-debert/hostsub/pkg/internal/hashutil"
	"github.com/arthur-debert/hostsub/pkg/registry"
	"github.com/arthur-debert/hostsub/pkg/testutil/testenv"
	"github.com/arthur-debert/hostsub/pkg/transaction"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	urlA = "https://a.example/hosts"
	urlB = "https://b.example/hosts"
)

func subscribeWith(t *testing.T, env *core.Environment, url string) {
	t.Helper()
	_, err := subscribe.Subscribe(subscribe.SubscribeOptions{Env: env, URL: url})
	require.NoError(t, err)
}

func TestAssemble_RequiresConfig(t *testing.T) {
	_, err := core.Assemble(nil, nil, nil, core.Dependencies{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestConcurrentEnvironmentsKeepBothSubscriptions(t *testing.T) {
	env := testenv.New(t, testenv.MemoryOnly)
	env.Downloader.Serve(urlA, "1.1.1.1 a.test\n").Serve(urlB, "2.2.2.2 b.test\n")

	// Assembled before the first subscribe, so its registry starts stale
	other := env.Another()

	subscribeWith(t, env.Environment, urlA)
	subscribeWith(t, other, urlB)

	assert.Equal(t, []string{urlA, urlB}, hostsfile.Parse(env.ReadHosts()).URLs())

	onDisk, err := registry.Load(env.FS, env.Config.Registry.File)
	require.NoError(t, err)
	assert.Equal(t, []string{urlA, urlB}, onDisk.List())
	assert.Equal(t, []string{urlA, urlB}, other.Registry.List())
}

// leaveCommittedIntent records a subscribe of urlA that wrote the hosts
// file and stopped before its intent reached phase finalized.
func leaveCommittedIntent(t *testing.T, env *testenv.Env) {
	t.Helper()
	snap, err := env.Store.Latest()
	require.NoError(t, err)

	intent := transaction.Intent{
		ID:         "interrupted",
		Operation:  "subscribe",
		URL:        urlA,
		Target:     env.HostsFile,
		Snapshot:   snap.Name,
		Phase:      transaction.PhaseCommitted,
		Downstream: true,
		Before:     hashutil.ChecksumString(testenv.DefaultHosts),
		After:      hashutil.ChecksumString(env.ReadHosts()),
		Started:    testenv.StartTime.UTC(),
	}
	data, err := toml.Marshal(intent)
	require.NoError(t, err)

	path := env.Paths.IntentFile()
	require.NoError(t, env.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, env.FS.WriteFile(path, data, 0644))
}

func TestRecovery_ConsultsRegistry(t *testing.T) {
	noop := transaction.Operation{
		Name:   "noop",
		Mutate: func(*hostsfile.Document) (bool, error) { return false, nil },
	}

	t.Run("registry already updated keeps the file", func(t *testing.T) {
		env := testenv.New(t, testenv.MemoryOnly)
		env.Downloader.Serve(urlA, "1.1.1.1 a.test\n")
		subscribeWith(t, env.Environment, urlA)
		written := env.ReadHosts()
		leaveCommittedIntent(t, env)

		_, err := env.Coordinator.Apply(noop)
		require.NoError(t, err)

		assert.Equal(t, written, env.ReadHosts())
		assert.Equal(t, []string{urlA}, env.Registry.List())
		pending, err := env.Coordinator.Pending()
		require.NoError(t, err)
		assert.Nil(t, pending)
	})

	t.Run("registry never updated rolls the file back", func(t *testing.T) {
		env := testenv.New(t, testenv.MemoryOnly)
		env.Downloader.Serve(urlA, "1.1.1.1 a.test\n")
		subscribeWith(t, env.Environment, urlA)
		leaveCommittedIntent(t, env)

		env.Registry.Remove(urlA)
		require.NoError(t, env.Registry.Persist())

		_, err := env.Coordinator.Apply(noop)
		require.NoError(t, err)

		assert.Equal(t, testenv.DefaultHosts, env.ReadHosts())
		assert.Empty(t, env.Registry.List())
	})
}
