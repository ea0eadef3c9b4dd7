package subscribe

import (
	"github.com/arthur-debert/hostsub/pkg/commands/internal"
	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/hostsfile"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/transaction"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/arthur-debert/hostsub/pkg/validation"
)

// SubscribeOptions defines the options for the Subscribe command.
type SubscribeOptions struct {
	Env *core.Environment

	// URL of the hosts list to subscribe to
	URL string
}

// Subscribe downloads the list at URL, merges it into the hosts file as a
// subscription block and records the URL in the registry. The file and the
// registry change together or not at all.
func Subscribe(opts SubscribeOptions) (*types.SubscribeResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "Subscribe").Str("url", opts.URL).Msg("Executing command")

	env := opts.Env
	url, err := validation.URL(opts.URL)
	if err != nil {
		return nil, err
	}
	if err := env.Privilege.EnsureElevated(); err != nil {
		return nil, err
	}

	fetched, err := internal.Fetch(env, url)
	if err != nil {
		return nil, err
	}

	result := &types.SubscribeResult{
		URL:        url,
		Probed:     fetched.Probed,
		Reachable:  fetched.Reachable,
		Validation: fetched.Stats(),
	}
	result.Preview, result.MoreEntries = internal.Preview(fetched.Content)

	reg := env.Registry
	tx, err := env.Coordinator.Apply(transaction.Operation{
		Name: "subscribe",
		URL:  url,
		Mutate: func(doc *hostsfile.Document) (bool, error) {
			result.Updated = doc.HasSubscription(url)
			doc.AddOrUpdateSubscription(url, fetched.Content, env.Now())
			return true, nil
		},
		Finalize: func() error {
			if err := reg.Reload(); err != nil {
				return err
			}
			if !reg.Add(url) {
				return nil
			}
			if err := reg.Persist(); err != nil {
				reg.Remove(url)
				return err
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	result.Snapshot = tx.Snapshot.Info()
	result.Changed = tx.Changed
	result.TotalSubscriptions = reg.Count()

	log.Info().
		Str("command", "Subscribe").
		Str("url", url).
		Bool("updated", result.Updated).
		Int("entries", fetched.Report.ValidEntries).
		Msg("Command finished")
	return result, nil
}
