package hostsub

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Subscribe your hosts file to remote hosts lists"
	MsgSubscribeShort   = "Subscribe to a hosts list URL"
	MsgUnsubscribeShort = "Remove a subscription"
	MsgUpdateShort      = "Refresh subscriptions from their URLs"
	MsgListShort        = "Show subscriptions and their state in the hosts file"
	MsgBackupShort      = "Back up the hosts file now"
	MsgBackupLong       = "Take a snapshot of the hosts file and show the most recent backups."
	MsgBackupsShort     = "List hosts file backups"
	MsgRestoreShort     = "Restore the hosts file from a backup"
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagHostsFile = "Hosts file to manage (default from config, /etc/hosts)"
	MsgFlagConfig    = "Config file (default $XDG_CONFIG_HOME/hostsub/config.toml)"
	MsgFlagLimit     = "Number of backups to show, 0 shows all"

	// Error messages
	MsgErrEnvironment = "failed to initialize: %w"
	MsgErrSubscribe   = "failed to subscribe: %w"
	MsgErrUnsubscribe = "failed to unsubscribe: %w"
	MsgErrUpdate      = "failed to update subscriptions: %w"
	MsgErrList        = "failed to list subscriptions: %w"
	MsgErrBackup      = "failed to back up the hosts file: %w"
	MsgErrRestore     = "failed to restore: %w"
	MsgErrUpdateNone  = "none of the %d subscriptions could be updated"
	MsgErrNoCommand   = "no command specified"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/subscribe-long.txt
	msgSubscribeLongRaw string
	MsgSubscribeLong    = strings.TrimSpace(msgSubscribeLongRaw)

	//go:embed msgs/subscribe-example.txt
	msgSubscribeExampleRaw string
	MsgSubscribeExample    = strings.TrimRight(msgSubscribeExampleRaw, "\n")

	//go:embed msgs/unsubscribe-long.txt
	msgUnsubscribeLongRaw string
	MsgUnsubscribeLong    = strings.TrimSpace(msgUnsubscribeLongRaw)

	//go:embed msgs/update-long.txt
	msgUpdateLongRaw string
	MsgUpdateLong    = strings.TrimSpace(msgUpdateLongRaw)

	//go:embed msgs/list-long.txt
	msgListLongRaw string
	MsgListLong    = strings.TrimSpace(msgListLongRaw)

	//go:embed msgs/backups-long.txt
	msgBackupsLongRaw string
	MsgBackupsLong    = strings.TrimSpace(msgBackupsLongRaw)

	//go:embed msgs/restore-long.txt
	msgRestoreLongRaw string
	MsgRestoreLong    = strings.TrimSpace(msgRestoreLongRaw)

	//go:embed msgs/restore-example.txt
	msgRestoreExampleRaw string
	MsgRestoreExample    = strings.TrimRight(msgRestoreExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
