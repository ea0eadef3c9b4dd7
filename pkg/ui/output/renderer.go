package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/arthur-debert/hostsub/pkg/ui/output/styles"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// Renderer writes command results to w.
type Renderer struct {
	w     io.Writer
	color bool
	now   func() time.Time
}

// NewRenderer returns a Renderer. Without color every style is a no-op.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color, now: time.Now}
}

// WithClock replaces the clock used for relative ages.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

func (r *Renderer) style(name, s string) string {
	if !r.color {
		return s
	}
	return styles.GetStyle(name).Render(s)
}

func (r *Renderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) println(s string) {
	_, _ = fmt.Fprintln(r.w, s)
}

func (r *Renderer) age(t time.Time) string {
	return humanize.RelTime(t, r.now(), "ago", "from now")
}

func (r *Renderer) snapshot(s types.SnapshotInfo) string {
	return fmt.Sprintf("%s (%s, %s)", r.style("FilePath", s.Path), humanize.IBytes(uint64(s.Size)), r.age(s.Time))
}

// Subscribe renders a subscription.
func (r *Renderer) Subscribe(res *types.SubscribeResult) {
	if res.Probed && !res.Reachable {
		r.println(r.style("Warning", "! URL did not answer a HEAD request, downloaded anyway"))
	}

	r.println(r.style("Header", "Content preview"))
	for _, line := range res.Preview {
		r.printf("  %s\n", line)
	}
	if res.MoreEntries > 0 {
		r.printf("  ... and %d more entries\n", res.MoreEntries)
	}
	v := res.Validation
	r.println(r.style("Muted", fmt.Sprintf("%d lines, %d valid entries", v.TotalLines, v.ValidEntries)))
	if v.Suspicious {
		r.println(r.style("Warning", fmt.Sprintf("! only %.0f%% of the entry lines look like hosts entries", v.Ratio*100)))
	}

	verb := "Subscribed to"
	if res.Updated {
		verb = "Updated"
	}
	r.printf("%s %s\n", r.style("Success", "✓ "+verb), r.style("URL", res.URL))
	r.printf("Backup: %s\n", r.snapshot(res.Snapshot))
	r.printf("Total subscriptions: %d\n", res.TotalSubscriptions)
}

// Unsubscribe renders an unsubscription.
func (r *Renderer) Unsubscribe(res *types.UnsubscribeResult) {
	if res.NotFound {
		r.printf("%s %s\n", r.style("Warning", "Not subscribed to"), r.style("URL", res.URL))
		r.Subscriptions(res.Remaining)
		return
	}

	r.printf("%s %s\n", r.style("Success", "✓ Unsubscribed from"), r.style("URL", res.URL))
	if !res.RemovedFromFile {
		r.println(r.style("Muted", "The hosts file had no block for it, only the registry changed"))
	}
	if !res.WasRegistered {
		r.println(r.style("Muted", "It was not in the registry, removed the leftover block"))
	}
	r.printf("Backup: %s\n", r.snapshot(res.Snapshot))
	r.printf("Remaining subscriptions: %d\n", len(res.Remaining))
}

// Subscriptions renders a plain URL list.
func (r *Renderer) Subscriptions(urls []string) {
	if len(urls) == 0 {
		r.println(r.style("Muted", "No subscriptions."))
		return
	}
	r.println(r.style("Header", "Current subscriptions"))
	for i, url := range urls {
		r.printf("  %d. %s\n", i+1, r.style("URL", url))
	}
}

// UpdateProgress renders one finished URL of an update.
func (r *Renderer) UpdateProgress(index, total int, url string, err error) {
	prefix := fmt.Sprintf("[%d/%d]", index, total)
	if err != nil {
		r.printf("%s %s %s: %v\n", prefix, r.style("Error", "✗"), url, err)
		return
	}
	r.printf("%s %s %s\n", prefix, r.style("Success", "✓"), url)
}

// Update renders the summary of an update.
func (r *Renderer) Update(res *types.UpdateResult) {
	switch res.Outcome {
	case types.OutcomeEmpty:
		r.println(r.style("Muted", "No subscriptions to update. Add one with 'hostsub subscribe <url>'."))
		return
	case types.OutcomeAll:
		r.println(r.style("Success", fmt.Sprintf("✓ All %d subscriptions updated", res.Total)))
	case types.OutcomePartial:
		r.println(r.style("Warning", fmt.Sprintf("Updated %d of %d subscriptions", res.SuccessCount, res.Total)))
	case types.OutcomeNone:
		r.println(r.style("Error", fmt.Sprintf("✗ None of the %d subscriptions could be updated", res.Total)))
	}
	for _, failure := range res.Failures {
		r.printf("  %s %s: %s\n", r.style("Error", "✗"), failure.URL, failure.Error)
	}
}

// List renders the registry and hosts file comparison.
func (r *Renderer) List(res *types.ListResult) error {
	r.printf("Hosts file: %s\n", r.style("FilePath", res.HostsFile))
	if len(res.Subscriptions) == 0 && len(res.Orphaned) == 0 {
		r.println(r.style("Muted", "No subscriptions."))
		return nil
	}

	data := pterm.TableData{{"#", "URL", "STATUS", "ENTRIES"}}
	for i, sub := range res.Subscriptions {
		data = append(data, []string{fmt.Sprint(i + 1), sub.URL, r.status(sub.Status), entries(sub)})
	}
	for _, sub := range res.Orphaned {
		data = append(data, []string{"-", sub.URL, r.status(sub.Status), entries(sub)})
	}
	if err := r.table(data); err != nil {
		return err
	}

	r.printf("%d registered, %d applied", res.Registered, res.Applied)
	if len(res.Orphaned) > 0 {
		r.printf(", %d orphaned", len(res.Orphaned))
	}
	r.println("")
	return nil
}

func (r *Renderer) status(s string) string {
	switch s {
	case types.StatusApplied:
		return r.style("Success", s)
	case types.StatusNotSynced:
		return r.style("Warning", s)
	default:
		return r.style("Error", s)
	}
}

func entries(sub types.SubscriptionInfo) string {
	if sub.Status == types.StatusNotSynced {
		return "-"
	}
	return fmt.Sprint(sub.Entries)
}

// Backup renders a new snapshot and the most recent ones.
func (r *Renderer) Backup(res *types.BackupResult) error {
	r.printf("%s %s\n", r.style("Success", "✓ Backed up to"), r.snapshot(res.Snapshot))
	r.println("")
	return r.Backups(&types.ListBackupsResult{Snapshots: res.Recent, Total: res.Total})
}

// Backups renders a snapshot listing.
func (r *Renderer) Backups(res *types.ListBackupsResult) error {
	if len(res.Snapshots) == 0 {
		r.println(r.style("Muted", "No backups."))
		return nil
	}
	if res.Dir != "" {
		r.printf("Backups in %s\n", r.style("FilePath", res.Dir))
	}

	data := pterm.TableData{{"NAME", "SIZE", "CREATED"}}
	for _, s := range res.Snapshots {
		data = append(data, []string{s.Name, humanize.IBytes(uint64(s.Size)), r.age(s.Time)})
	}
	if err := r.table(data); err != nil {
		return err
	}
	if res.Total > len(res.Snapshots) {
		r.printf("Showing %d of %d backups\n", len(res.Snapshots), res.Total)
	}
	return nil
}

// Restore renders a restore.
func (r *Renderer) Restore(res *types.RestoreResult) {
	if !res.Changed {
		r.printf("Hosts file already matches %s\n", res.Restored.Name)
		return
	}
	r.printf("%s %s\n", r.style("Success", "✓ Restored"), r.snapshot(res.Restored))
	r.printf("Previous content saved to %s\n", r.style("FilePath", res.Safety.Path))
	r.println(r.style("Muted", "Run 'hostsub list' to check the subscriptions against the restored file."))
}

func (r *Renderer) table(data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	r.println(strings.TrimRight(table, "\n"))
	return nil
}
