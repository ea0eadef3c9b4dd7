package unsubscribe

import (
	"strings"

	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/hostsfile"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/transaction"
	"github.com/arthur-debert/hostsub/pkg/types"
)

// UnsubscribeOptions defines the options for the Unsubscribe command.
type UnsubscribeOptions struct {
	Env *core.Environment

	// URL of the subscription to drop
	URL string
}

// Unsubscribe removes the block for URL from the hosts file and forgets
// the URL. A URL that is neither registered nor present in the file is not
// an error: the result lists what is subscribed instead. A block left in
// the file without a registry entry is still removed.
func Unsubscribe(opts UnsubscribeOptions) (*types.UnsubscribeResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "Unsubscribe").Str("url", opts.URL).Msg("Executing command")

	env := opts.Env
	url := strings.TrimSpace(opts.URL)
	reg := env.Registry

	if err := env.Privilege.EnsureElevated(); err != nil {
		return nil, err
	}

	result := &types.UnsubscribeResult{
		URL:           url,
		WasRegistered: reg.Contains(url),
	}

	doc, err := env.Coordinator.Document()
	if err != nil {
		return nil, err
	}
	if !result.WasRegistered && !doc.HasSubscription(url) {
		result.NotFound = true
		result.Remaining = reg.List()
		log.Info().Str("command", "Unsubscribe").Str("url", url).Msg("Subscription not found")
		return result, nil
	}

	tx, err := env.Coordinator.Apply(transaction.Operation{
		Name: "unsubscribe",
		URL:  url,
		Mutate: func(doc *hostsfile.Document) (bool, error) {
			result.RemovedFromFile = doc.RemoveSubscription(url)
			return result.RemovedFromFile, nil
		},
		Finalize: func() error {
			if err := reg.Reload(); err != nil {
				return err
			}
			result.WasRegistered = reg.Remove(url)
			if !result.WasRegistered {
				return nil
			}
			if err := reg.Persist(); err != nil {
				reg.Add(url)
				return err
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	result.Snapshot = tx.Snapshot.Info()
	result.Remaining = reg.List()

	log.Info().
		Str("command", "Unsubscribe").
		Str("url", url).
		Bool("removedFromFile", result.RemovedFromFile).
		Bool("wasRegistered", result.WasRegistered).
		Msg("Command finished")
	return result, nil
}
