package config

import "time"

// Config is the fully resolved hostsub configuration.
type Config struct {
	Hosts      Hosts      `koanf:"hosts"`
	Backup     Backup     `koanf:"backup"`
	Registry   Registry   `koanf:"registry"`
	Download   Download   `koanf:"download"`
	Lock       Lock       `koanf:"lock"`
	Validation Validation `koanf:"validation"`
}

// Hosts selects the managed file.
type Hosts struct {
	File string `koanf:"file"`
}

// Backup controls the snapshot store.
type Backup struct {
	Dir    string `koanf:"dir"`
	Prefix string `koanf:"prefix"`
	Suffix string `koanf:"suffix"`
	Retain int    `koanf:"retain"`
}

// Registry locates the subscriptions file.
type Registry struct {
	File string `koanf:"file"`
}

// Download configures the HTTP client.
type Download struct {
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
	Delay     time.Duration `koanf:"delay"`
	Probe     bool          `koanf:"probe"`
}

// Lock configures the advisory lock around transactions.
type Lock struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Validation tunes downloaded content checks.
type Validation struct {
	MinValidRatio float64 `koanf:"min_valid_ratio"`
}
