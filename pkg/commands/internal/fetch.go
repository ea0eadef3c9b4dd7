package internal

import (
	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/arthur-debert/hostsub/pkg/validation"
)

// Fetched is a downloaded and validated hosts list.
type Fetched struct {
	Content   string
	Report    validation.Report
	Probed    bool
	Reachable bool
}

// Stats converts the validation report for display.
func (f *Fetched) Stats() types.ValidationStats {
	return types.ValidationStats{
		TotalLines:   f.Report.TotalLines,
		EntryLines:   f.Report.EntryLines,
		ValidEntries: f.Report.ValidEntries,
		InvalidLines: f.Report.InvalidLines,
		Ratio:        f.Report.Ratio(),
		Suspicious:   f.Report.Suspicious,
	}
}

// Fetch probes, downloads and validates url. An unreachable probe is only
// a warning: some servers refuse HEAD but serve GET.
func Fetch(env *core.Environment, url string) (*Fetched, error) {
	logger := logging.GetLogger("commands.fetch").With().Str("url", url).Logger()
	fetched := &Fetched{}

	if env.Config.Download.Probe {
		fetched.Probed = true
		fetched.Reachable = env.Downloader.Probe(url)
		if !fetched.Reachable {
			logger.Warn().Msg("URL did not answer the probe, trying download anyway")
		}
	}

	content, err := env.Downloader.Download(url)
	if err != nil {
		return nil, err
	}
	fetched.Content = content

	report, err := env.Validator.Validate(content)
	if err != nil {
		return nil, err
	}
	fetched.Report = report

	logger.Debug().Int("bytes", len(content)).Int("valid", report.ValidEntries).Msg("Fetched subscription")
	return fetched, nil
}
