// Package testenv builds complete hostsub environments for command tests.
package testenv

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/hostsub/pkg/config"
	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/filesystem"
	"github.com/arthur-debert/hostsub/pkg/paths"
	"github.com/arthur-debert/hostsub/pkg/testutil"
	"github.com/arthur-debert/hostsub/pkg/transaction"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/stretchr/testify/require"
)

// Mode selects the filesystem backing an environment.
type Mode int

const (
	// MemoryOnly runs on an afero memory filesystem with no lock file
	MemoryOnly Mode = iota

	// Isolated runs on the real filesystem under t.TempDir() with the
	// real advisory lock
	Isolated
)

// DefaultHosts is the hosts file every environment starts with.
const DefaultHosts = "127.0.0.1 localhost\n::1 localhost\n"

// StartTime is the initial value of the environment clock.
var StartTime = time.Unix(1700000000, 0)

// Env wraps a core.Environment with handles on its fakes.
type Env struct {
	*core.Environment

	t          *testing.T
	HostsFile  string
	Downloader *testutil.FakeDownloader
	Privilege  *testutil.FakePrivilege
	Failing    *testutil.FailingFS

	cfg   *config.Config
	paths paths.Paths
	deps  core.Dependencies

	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

// Option adjusts the configuration before the environment is assembled.
type Option func(overrides map[string]interface{})

// WithConfig sets a configuration key, e.g. WithConfig("backup.retain", 3).
func WithConfig(key string, value interface{}) Option {
	return func(overrides map[string]interface{}) {
		overrides[key] = value
	}
}

// New returns an environment whose hosts file holds DefaultHosts.
func New(t *testing.T, mode Mode, opts ...Option) *Env {
	t.Helper()

	var (
		root   string
		inner  types.FS
		locker transaction.Locker
	)
	switch mode {
	case Isolated:
		root = t.TempDir()
		inner = filesystem.NewOS()
	default:
		root = "/hostsub"
		inner = filesystem.NewMemory()
		locker = transaction.NopLocker{}
	}

	failing := testutil.NewFailingFS(inner)
	hostsFile := filepath.Join(root, "etc", "hosts")
	require.NoError(t, failing.MkdirAll(filepath.Dir(hostsFile), 0755))
	require.NoError(t, failing.WriteFile(hostsFile, []byte(DefaultHosts), 0644))

	overrides := map[string]interface{}{"hosts.file": hostsFile}
	for _, opt := range opts {
		opt(overrides)
	}

	p := paths.NewWithRoot(root)
	cfg, err := config.Load(p, config.LoadOptions{Overrides: overrides})
	require.NoError(t, err)

	env := &Env{
		t:          t,
		HostsFile:  hostsFile,
		Downloader: testutil.NewFakeDownloader(),
		Privilege:  &testutil.FakePrivilege{},
		Failing:    failing,
		now:        StartTime,
	}

	env.cfg, env.paths = cfg, p
	env.deps = core.Dependencies{
		Locker:     locker,
		Downloader: env.Downloader,
		Privilege:  env.Privilege,
		Sleep:      env.sleep,
		Now:        env.clock,
	}
	env.Environment = env.Another()

	return env
}

// Another assembles a fresh Environment over the same files and fakes, the
// way a second hostsub process would see them.
func (e *Env) Another() *core.Environment {
	e.t.Helper()
	assembled, err := core.Assemble(e.cfg, e.paths, e.Failing, e.deps)
	require.NoError(e.t, err)
	return assembled
}

func (e *Env) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *Env) sleep(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slept = append(e.slept, d)
}

// Advance moves the clock forward.
func (e *Env) Advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
}

// Slept returns the pauses requested so far.
func (e *Env) Slept() []time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]time.Duration(nil), e.slept...)
}

// ReadHosts returns the hosts file content.
func (e *Env) ReadHosts() string {
	e.t.Helper()
	data, err := e.FS.ReadFile(e.HostsFile)
	require.NoError(e.t, err)
	return string(data)
}

// WriteHosts replaces the hosts file content.
func (e *Env) WriteHosts(content string) {
	e.t.Helper()
	require.NoError(e.t, e.FS.WriteFile(e.HostsFile, []byte(content), 0644))
}

// SnapshotCount returns how many backups exist.
func (e *Env) SnapshotCount() int {
	e.t.Helper()
	snaps, err := e.Store.List()
	require.NoError(e.t, err)
	return len(snaps)
}
