package validation

import (
	"net/netip"
	"strings"

	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/miekg/dns"
	"github.com/txn2/txeh"
)

// DefaultMinValidRatio flags downloads where fewer than half of the entry
// lines look like "IP hostname".
const DefaultMinValidRatio = 0.5

// maxReportedLines bounds how many bad lines get logged per download.
const maxReportedLines = 10

// Report summarizes a content check.
type Report struct {
	TotalLines   int
	EntryLines   int // lines that are neither blank nor comments
	ValidEntries int
	BadHostnames int
	InvalidLines []int // 1-based line numbers, at most maxReportedLines
	Suspicious   bool
}

// Ratio is the share of entry lines that are valid.
func (r Report) Ratio() float64 {
	if r.EntryLines == 0 {
		return 0
	}
	return float64(r.ValidEntries) / float64(r.EntryLines)
}

// ContentValidator checks downloaded hosts content.
type ContentValidator struct {
	MinValidRatio float64
}

// NewContentValidator returns a validator warning below minValidRatio.
func NewContentValidator(minValidRatio float64) *ContentValidator {
	return &ContentValidator{MinValidRatio: minValidRatio}
}

// Validate rejects empty content and content without a single entry line.
// Anything else passes; a low share of valid entries only marks the report
// as suspicious and logs a warning.
func (v *ContentValidator) Validate(content string) (Report, error) {
	logger := logging.GetLogger("validation")

	var report Report
	if strings.TrimSpace(content) == "" {
		return report, errors.New(errors.ErrContentInvalid, "downloaded content is empty")
	}

	// txeh drops a last line that has no newline
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	lines, err := txeh.ParseHostsFromString(content)
	if err != nil {
		return report, errors.Wrap(err, errors.ErrContentInvalid, "failed to parse downloaded content")
	}

	for i, line := range lines {
		report.TotalLines++
		if line.LineType == txeh.EMPTY || line.LineType == txeh.COMMENT {
			continue
		}
		report.EntryLines++

		valid := false
		if line.LineType == txeh.ADDRESS {
			var badNames int
			valid, badNames = checkEntry(line.Address, line.Hostnames)
			report.BadHostnames += badNames
		}
		if valid {
			report.ValidEntries++
			continue
		}
		if len(report.InvalidLines) < maxReportedLines {
			report.InvalidLines = append(report.InvalidLines, i+1)
			logger.Warn().
				Int("line", i+1).
				Str("content", strings.TrimSpace(line.Raw)).
				Msg("Line is not a hosts entry")
		}
	}

	if report.EntryLines == 0 {
		return report, errors.New(errors.ErrContentInvalid, "downloaded content has no hosts entries")
	}

	report.Suspicious = report.Ratio() < v.MinValidRatio
	event := logger.Info()
	if report.Suspicious {
		event = logger.Warn()
	}
	event.
		Int("valid", report.ValidEntries).
		Int("entries", report.EntryLines).
		Int("bad_hostnames", report.BadHostnames).
		Bool("suspicious", report.Suspicious).
		Msg("Content validated")

	return report, nil
}

// checkEntry accepts an IPv4 or IPv6 address followed by at least one
// hostname. Hostnames that are not valid domain names are counted but do
// not reject the line.
func checkEntry(address string, hostnames []string) (bool, int) {
	if _, err := netip.ParseAddr(address); err != nil {
		return false, 0
	}

	names, bad := 0, 0
	for _, name := range hostnames {
		if strings.HasPrefix(name, "#") {
			break
		}
		names++
		if _, ok := dns.IsDomainName(name); !ok {
			bad++
		}
	}
	return names > 0, bad
}
