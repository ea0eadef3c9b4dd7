// Package config handles configuration management for hostsub.
// It supports loading configuration from multiple sources including
// TOML files, environment variables, and command-line flags.
//
// Sources are applied in order, later ones winning:
//
//  1. Embedded defaults (embedded/defaults.toml)
//  2. User config file ($XDG_CONFIG_HOME/hostsub/config.toml or --config)
//  3. Environment variables HOSTSUB_<SECTION>_<KEY>, e.g. HOSTSUB_HOSTS_FILE
//  4. Overrides passed by the CLI (flags)
//
// Empty path settings are filled from pkg/paths after loading.
package config
