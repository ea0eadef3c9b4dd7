package core

import (
	"time"

	"github.com/arthur-debert/hostsub/pkg/backup"
	"github.com/arthur-debert/hostsub/pkg/config"
	"github.com/arthur-debert/hostsub/pkg/download"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/filesystem"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/paths"
	"github.com/arthur-debert/hostsub/pkg/privilege"
	"github.com/arthur-debert/hostsub/pkg/registry"
	"github.com/arthur-debert/hostsub/pkg/transaction"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/arthur-debert/hostsub/pkg/validation"
)

// Environment is everything a command touches.
type Environment struct {
	Config *config.Config
	Paths  paths.Paths
	FS     types.FS

	Store       *backup.Store
	Coordinator *transaction.Coordinator
	Registry    registry.Registry

	Downloader download.Downloader
	Validator  *validation.ContentValidator
	Privilege  privilege.Checker

	// Sleep pauses between downloads of a batch
	Sleep func(time.Duration)

	// Now is the clock used for block timestamps and snapshot names
	Now func() time.Time
}

// Dependencies are the collaborators Assemble cannot derive from
// configuration. Nil fields get the production implementation.
type Dependencies struct {
	Locker     transaction.Locker
	Downloader download.Downloader
	Privilege  privilege.Checker
	Sleep      func(time.Duration)
	Now        func() time.Time
}

// Options selects where NewEnvironment reads its configuration.
type Options struct {
	// ConfigFile replaces the default config file location
	ConfigFile string

	// HostsFile overrides hosts.file
	HostsFile string
}

// NewEnvironment loads configuration from the XDG locations and assembles
// a production Environment on the real filesystem.
func NewEnvironment(opts Options) (*Environment, error) {
	p := paths.New()

	loadOpts := config.LoadOptions{ConfigFile: opts.ConfigFile}
	if opts.HostsFile != "" {
		loadOpts.Overrides = map[string]interface{}{"hosts.file": opts.HostsFile}
	}

	cfg, err := config.Load(p, loadOpts)
	if err != nil {
		return nil, err
	}
	return Assemble(cfg, p, filesystem.NewOS(), Dependencies{})
}

// Assemble wires an Environment from cfg over fsys.
func Assemble(cfg *config.Config, p paths.Paths, fsys types.FS, deps Dependencies) (*Environment, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrInvalidInput, "configuration is required")
	}
	logger := logging.GetLogger("core")

	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	if deps.Downloader == nil {
		deps.Downloader = download.New(download.Options{
			Timeout:   cfg.Download.Timeout,
			UserAgent: cfg.Download.UserAgent,
		})
	}
	if deps.Privilege == nil {
		deps.Privilege = privilege.NewSystem(cfg.Hosts.File)
	}

	store := backup.NewStore(fsys, cfg.Backup.Dir,
		backup.WithNaming(cfg.Backup.Prefix, cfg.Backup.Suffix),
		backup.WithClock(deps.Now),
	)

	reg, err := registry.Load(fsys, cfg.Registry.File)
	if err != nil {
		return nil, err
	}

	coordinator := transaction.New(fsys, store, transaction.Options{
		HostsFile:   cfg.Hosts.File,
		IntentFile:  p.IntentFile(),
		Locker:      deps.Locker,
		LockTimeout: cfg.Lock.Timeout,
		Retain:      cfg.Backup.Retain,
		Now:         deps.Now,
		Settled:     registrySettled(reg),
	})

	logger.Debug().
		Str("hostsFile", cfg.Hosts.File).
		Str("backupDir", cfg.Backup.Dir).
		Str("registry", cfg.Registry.File).
		Int("subscriptions", reg.Count()).
		Msg("Environment assembled")

	return &Environment{
		Config:      cfg,
		Paths:       p,
		FS:          fsys,
		Store:       store,
		Coordinator: coordinator,
		Registry:    reg,
		Downloader:  deps.Downloader,
		Validator:   validation.NewContentValidator(cfg.Validation.MinValidRatio),
		Privilege:   deps.Privilege,
		Sleep:       deps.Sleep,
		Now:         deps.Now,
	}, nil
}

// registrySettled tells recovery whether the registry on disk already
// matches an interrupted operation on intent.URL.
func registrySettled(reg registry.Registry) func(intent *transaction.Intent) (bool, error) {
	return func(intent *transaction.Intent) (bool, error) {
		if err := reg.Reload(); err != nil {
			return false, err
		}
		switch intent.Operation {
		case "unsubscribe":
			return !reg.Contains(intent.URL), nil
		case "subscribe", "update":
			return reg.Contains(intent.URL), nil
		default:
			return false, errors.Newf(errors.ErrInternal, "unknown operation %q in intent", intent.Operation)
		}
	}
}
