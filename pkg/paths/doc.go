// Package paths provides centralized path handling for hostsub.
//
// It follows the XDG Base Directory specification:
//
//   - Config: $XDG_CONFIG_HOME/hostsub (config.toml)
//   - Data: $XDG_DATA_HOME/hostsub (subscriptions registry, backups)
//   - State: $XDG_STATE_HOME/hostsub (log file, transaction intent)
//
// # Environment Variables
//
//   - HOSTSUB_CONFIG_DIR: Override the config directory
//   - HOSTSUB_DATA_DIR: Override the data directory
//   - HOSTSUB_STATE_DIR: Override the state directory
//
// Paths here are defaults. Anything user facing (hosts file, backup
// directory, registry file) can be changed in pkg/config.
package paths
