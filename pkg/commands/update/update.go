package update

import (
	"github.com/arthur-debert/hostsub/pkg/commands/internal"
	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/hostsfile"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/transaction"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/arthur-debert/hostsub/pkg/validation"
)

// UpdateOptions defines the options for the Update command.
type UpdateOptions struct {
	Env *core.Environment

	// URLs limits the refresh to these subscriptions; empty means all
	URLs []string

	// Progress, when set, is called after each URL
	Progress func(index, total int, url string, err error)
}

// Update refreshes subscriptions one at a time, each in its own
// transaction, pausing between downloads. A failing URL does not stop the
// batch; the result reports which ones failed.
func Update(opts UpdateOptions) (*types.UpdateResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "Update").Msg("Executing command")

	env := opts.Env
	urls := opts.URLs
	if len(urls) == 0 {
		urls = env.Registry.List()
	}

	result := &types.UpdateResult{
		Total:      len(urls),
		Updated:    []string{},
		FailedURLs: []string{},
		Failures:   []types.UpdateFailure{},
	}
	if len(urls) == 0 {
		result.Outcome = types.OutcomeEmpty
		log.Info().Str("command", "Update").Msg("No subscriptions to update")
		return result, nil
	}

	if err := env.Privilege.EnsureElevated(); err != nil {
		return nil, err
	}

	for i, url := range urls {
		err := refresh(env, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Subscription update failed")
			result.FailedURLs = append(result.FailedURLs, url)
			result.Failures = append(result.Failures, types.UpdateFailure{URL: url, Error: err.Error()})
		} else {
			result.SuccessCount++
			result.Updated = append(result.Updated, url)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(urls), url, err)
		}

		if i < len(urls)-1 && env.Config.Download.Delay > 0 {
			env.Sleep(env.Config.Download.Delay)
		}
	}

	switch result.SuccessCount {
	case result.Total:
		result.Outcome = types.OutcomeAll
	case 0:
		result.Outcome = types.OutcomeNone
	default:
		result.Outcome = types.OutcomePartial
	}

	log.Info().
		Str("command", "Update").
		Int("total", result.Total).
		Int("success", result.SuccessCount).
		Strs("failed", result.FailedURLs).
		Msg("Command finished")
	return result, nil
}

func refresh(env *core.Environment, raw string) error {
	url, err := validation.URL(raw)
	if err != nil {
		return err
	}
	fetched, err := internal.Fetch(env, url)
	if err != nil {
		return err
	}

	reg := env.Registry
	_, err = env.Coordinator.Apply(transaction.Operation{
		Name: "update",
		URL:  url,
		Mutate: func(doc *hostsfile.Document) (bool, error) {
			doc.AddOrUpdateSubscription(url, fetched.Content, env.Now())
			return true, nil
		},
		Finalize: func() error {
			if err := reg.Reload(); err != nil {
				return err
			}
			// A URL refreshed by name but missing from the registry is
			// registered, so list and update agree afterwards.
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
	return err
}
