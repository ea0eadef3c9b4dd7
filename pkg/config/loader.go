package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/hostsub/internal/version"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "HOSTSUB_"

// LoadOptions tweaks where configuration comes from.
type LoadOptions struct {
	// ConfigFile replaces the default user config path. Unlike the default,
	// an explicit file must exist.
	ConfigFile string

	// Overrides are applied last, keyed by dotted path ("hosts.file").
	Overrides map[string]interface{}
}

// Load resolves the configuration for p.
func Load(p paths.Paths, opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file
	configPath := p.ConfigFile()
	if opts.ConfigFile != "" {
		configPath = paths.ExpandHome(opts.ConfigFile)
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", configPath)
		}
	} else if opts.ConfigFile != "" {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", configPath)
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := postProcess(&cfg, p); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps HOSTSUB_DOWNLOAD_USER_AGENT to download.user_agent: the
// first underscore separates the section, the rest belong to the key.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

func postProcess(cfg *Config, p paths.Paths) error {
	if cfg.Hosts.File == "" {
		cfg.Hosts.File = paths.DefaultHostsFile
	}
	cfg.Hosts.File = paths.ExpandHome(cfg.Hosts.File)

	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = p.BackupDir(cfg.Hosts.File)
	}
	cfg.Backup.Dir = paths.ExpandHome(cfg.Backup.Dir)

	if cfg.Registry.File == "" {
		cfg.Registry.File = p.RegistryFile()
	}
	cfg.Registry.File = paths.ExpandHome(cfg.Registry.File)

	if cfg.Download.UserAgent == "" {
		cfg.Download.UserAgent = fmt.Sprintf("hostsub/%s", version.Version)
	}

	switch {
	case cfg.Backup.Prefix == "":
		return errors.New(errors.ErrConfigParse, "backup.prefix cannot be empty")
	case cfg.Backup.Retain < 0:
		return errors.Newf(errors.ErrConfigParse, "backup.retain must be >= 0, got %d", cfg.Backup.Retain)
	case cfg.Download.Timeout <= 0:
		return errors.Newf(errors.ErrConfigParse, "download.timeout must be positive, got %s", cfg.Download.Timeout)
	case cfg.Download.Delay < 0:
		return errors.Newf(errors.ErrConfigParse, "download.delay cannot be negative, got %s", cfg.Download.Delay)
	case cfg.Lock.Timeout <= 0:
		return errors.Newf(errors.ErrConfigParse, "lock.timeout must be positive, got %s", cfg.Lock.Timeout)
	case cfg.Validation.MinValidRatio < 0 || cfg.Validation.MinValidRatio > 1:
		return errors.Newf(errors.ErrConfigParse, "validation.min_valid_ratio must be within [0, 1], got %v", cfg.Validation.MinValidRatio)
	}
	return nil
}
