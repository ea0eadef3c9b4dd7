package list

import (
	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/types"
)

// ListOptions defines the options for the List command.
type ListOptions struct {
	Env *core.Environment
}

// List compares the registry with the blocks in the hosts file. Registered
// URLs are applied or not synced; blocks nobody registered are orphaned.
// It reads without locking and never writes.
func List(opts ListOptions) (*types.ListResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "List").Msg("Executing command")

	env := opts.Env
	doc, err := env.Coordinator.Document()
	if err != nil {
		return nil, err
	}

	result := &types.ListResult{
		HostsFile:     env.Coordinator.HostsFile(),
		Subscriptions: []types.SubscriptionInfo{},
		Orphaned:      []types.SubscriptionInfo{},
	}

	for _, url := range env.Registry.List() {
		info := types.SubscriptionInfo{URL: url, Status: types.StatusNotSynced}
		if doc.HasSubscription(url) {
			info.Status = types.StatusApplied
			info.Entries = len(doc.Entries(url))
			result.Applied++
		}
		result.Subscriptions = append(result.Subscriptions, info)
	}
	result.Registered = len(result.Subscriptions)

	for _, url := range doc.URLs() {
		if env.Registry.Contains(url) {
			continue
		}
		result.Orphaned = append(result.Orphaned, types.SubscriptionInfo{
			URL:     url,
			Status:  types.StatusOrphaned,
			Entries: len(doc.Entries(url)),
		})
	}

	log.Info().
		Str("command", "List").
		Int("registered", result.Registered).
		Int("applied", result.Applied).
		Int("orphaned", len(result.Orphaned)).
		Msg("Command finished")
	return result, nil
}
