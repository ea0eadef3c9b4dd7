package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for hostsub
	EnvConfigDir = "HOSTSUB_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for hostsub
	EnvDataDir = "HOSTSUB_DATA_DIR"

	// EnvStateDir overrides the XDG state directory for hostsub
	EnvStateDir = "HOSTSUB_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name used under every XDG base
	AppDirName = "hostsub"

	// ConfigFileName is the user configuration file
	ConfigFileName = "config.toml"

	// RegistryFileName stores the subscribed URLs
	RegistryFileName = "subscriptions.toml"

	// BackupsDir is the data subdirectory holding snapshots, one dir per target
	BackupsDir = "backups"

	// IntentFileName records an in-flight transaction
	IntentFileName = "intent.toml"

	// LockFileName is the advisory lock inside the backup directory
	LockFileName = ".lock"

	// DefaultHostsFile is the managed file on unix systems
	DefaultHostsFile = "/etc/hosts"
)

// Paths resolves every location hostsub reads or writes.
type Paths interface {
	ConfigDir() string
	DataDir() string
	StateDir() string
	ConfigFile() string
	RegistryFile() string
	BackupDir(hostsFile string) string
	IntentFile() string
}

type paths struct {
	configDir string
	dataDir   string
	stateDir  string
}

// New creates a Paths instance from the environment.
func New() Paths {
	return &paths{
		configDir: resolve(EnvConfigDir, xdg.ConfigHome),
		dataDir:   resolve(EnvDataDir, xdg.DataHome),
		stateDir:  resolve(EnvStateDir, xdg.StateHome),
	}
}

// NewWithRoot puts every directory under root, mostly for tests.
func NewWithRoot(root string) Paths {
	return &paths{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
		stateDir:  filepath.Join(root, "state"),
	}
}

func resolve(envVar, base string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(base, AppDirName)
}

func (p *paths) ConfigDir() string { return p.configDir }

func (p *paths) DataDir() string { return p.dataDir }

func (p *paths) StateDir() string { return p.stateDir }

func (p *paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

func (p *paths) RegistryFile() string {
	return filepath.Join(p.dataDir, RegistryFileName)
}

// BackupDir returns the backup directory for a managed file. Each target
// gets its own directory named after the file, so /etc/hosts backups live
// in <data>/backups/hosts.
func (p *paths) BackupDir(hostsFile string) string {
	name := filepath.Base(hostsFile)
	if name == "." || name == string(filepath.Separator) {
		name = "hosts"
	}
	return filepath.Join(p.dataDir, BackupsDir, name)
}

func (p *paths) IntentFile() string {
	return filepath.Join(p.stateDir, IntentFileName)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user is not supported
	return path
}
