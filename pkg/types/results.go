package types

import "time"

// Update outcomes
const (
	OutcomeAll     = "all"
	OutcomePartial = "partial"
	OutcomeNone    = "none"
	OutcomeEmpty   = "empty"
)

// Subscription status in a listing
const (
	StatusApplied   = "applied"
	StatusNotSynced = "not synced"
	StatusOrphaned  = "orphaned"
)

// SnapshotInfo describes one backup of the hosts file.
type SnapshotInfo struct {
	Name string    `json:"name"`
	Path string    `json:"path"`
	Size int64     `json:"size"`
	Time time.Time `json:"time"`
}

// ValidationStats summarizes the checks run on downloaded content.
type ValidationStats struct {
	TotalLines   int     `json:"totalLines"`
	EntryLines   int     `json:"entryLines"`
	ValidEntries int     `json:"validEntries"`
	InvalidLines []int   `json:"invalidLines,omitempty"`
	Ratio        float64 `json:"ratio"`
	Suspicious   bool    `json:"suspicious"`
}

// SubscribeResult is returned by the subscribe command.
type SubscribeResult struct {
	URL string `json:"url"`

	// Updated is true when a block for the URL already existed and was
	// replaced
	Updated bool `json:"updated"`

	// Probed is false when the reachability probe was disabled
	Probed    bool `json:"probed"`
	Reachable bool `json:"reachable"`

	// Preview holds the first entries of the block, truncated for display
	Preview     []string `json:"preview"`
	MoreEntries int      `json:"moreEntries"`

	Validation ValidationStats `json:"validation"`
	Snapshot   SnapshotInfo    `json:"snapshot"`
	Changed    bool            `json:"changed"`

	TotalSubscriptions int `json:"totalSubscriptions"`
}

// UnsubscribeResult is returned by the unsubscribe command.
type UnsubscribeResult struct {
	URL             string `json:"url"`
	RemovedFromFile bool   `json:"removedFromFile"`
	WasRegistered   bool   `json:"wasRegistered"`

	// NotFound is set when the URL was neither registered nor present in
	// the hosts file; Remaining then lists what is subscribed
	NotFound  bool     `json:"notFound"`
	Remaining []string `json:"remaining"`

	Snapshot SnapshotInfo `json:"snapshot"`
}

// UpdateFailure is one URL that could not be refreshed.
type UpdateFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// UpdateResult is returned by the update command.
type UpdateResult struct {
	Total        int             `json:"total"`
	SuccessCount int             `json:"successCount"`
	Updated      []string        `json:"updated"`
	FailedURLs   []string        `json:"failedUrls"`
	Failures     []UpdateFailure `json:"failures"`
	Outcome      string          `json:"outcome"`
}

// SubscriptionInfo is one row of the list command.
type SubscriptionInfo struct {
	URL     string `json:"url"`
	Status  string `json:"status"`
	Entries int    `json:"entries"`
}

// ListResult is returned by the list command.
type ListResult struct {
	HostsFile     string             `json:"hostsFile"`
	Subscriptions []SubscriptionInfo `json:"subscriptions"`
	Orphaned      []SubscriptionInfo `json:"orphaned"`
	Registered    int                `json:"registered"`
	Applied       int                `json:"applied"`
}

// BackupResult is returned by the backup command.
type BackupResult struct {
	Snapshot SnapshotInfo   `json:"snapshot"`
	Recent   []SnapshotInfo `json:"recent"`
	Total    int            `json:"total"`
}

// ListBackupsResult is returned by the backups command, newest first.
type ListBackupsResult struct {
	Dir       string         `json:"dir"`
	Snapshots []SnapshotInfo `json:"snapshots"`
	Total     int            `json:"total"`
}

// RestoreResult is returned by the restore command.
type RestoreResult struct {
	Restored SnapshotInfo `json:"restored"`

	// Safety is the backup of the content the restore replaced
	Safety  SnapshotInfo `json:"safety"`
	Changed bool         `json:"changed"`
}
