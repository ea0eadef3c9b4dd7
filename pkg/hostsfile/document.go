package hostsfile

import (
	"fmt"
	"strings"
	"time"
)

// Marker lines delimiting a subscription block. The URL sits between the
// prefix and MarkerSuffix.
const (
	StartPrefix  = "# === hostsub subscription: "
	EndPrefix    = "# === end hostsub subscription: "
	MarkerSuffix = " ==="

	timestampFormat = "# subscribed at: %d (UTC timestamp)"
)

// Document is the in-memory form of a hosts file: free content the user
// owns plus one block per subscribed URL. Blocks keep the order they were
// first seen in (or added in), so reconstruction is deterministic.
type Document struct {
	free   []string
	order  []string
	blocks map[string][]string
}

// New returns an empty document.
func New() *Document {
	return &Document{blocks: make(map[string][]string)}
}

// Parse splits text into free content and subscription blocks. It never
// fails: stray end markers are kept as free content and a block still
// open at end of input keeps the lines it collected.
func Parse(text string) *Document {
	doc := New()
	if text == "" {
		return doc
	}

	var (
		openURL string
		open    bool
		lines   []string

		// A single blank line between a closed block and the next start
		// marker is the separator Reconstruct emits; it is not free content.
		afterBlock bool
		pending    bool
	)

	closeBlock := func() {
		doc.setBlock(openURL, lines)
		open = false
		openURL = ""
		lines = nil
	}

	for _, line := range splitLines(text) {
		url, isStart := startMarkerURL(line)

		if afterBlock {
			if line == "" && !pending {
				pending = true
				continue
			}
			if pending && !isStart {
				doc.free = append(doc.free, "")
			}
			afterBlock = false
			pending = false
			if line == "" {
				// second blank in a row: it may still be a separator
				afterBlock = true
				pending = true
				continue
			}
		}

		if isStart {
			if open {
				closeBlock()
			}
			open = true
			openURL = url
			lines = []string{line}
			continue
		}

		if isEndMarker(line) {
			if open {
				lines = append(lines, line)
				closeBlock()
				afterBlock = true
			} else {
				doc.free = append(doc.free, line)
			}
			continue
		}

		if open {
			lines = append(lines, line)
		} else {
			doc.free = append(doc.free, line)
		}
	}

	if open {
		closeBlock()
	}
	if pending {
		doc.free = append(doc.free, "")
	}

	return doc
}

// Reconstruct renders the document back to text: free content first, then
// every block in order, separated by a blank line unless the previous line
// is already blank. Lines are joined with "\n" and no trailing newline is
// added.
func (d *Document) Reconstruct() string {
	size := len(d.free) + len(d.order)
	for _, url := range d.order {
		size += len(d.blocks[url])
	}
	out := make([]string, 0, size)

	out = append(out, d.free...)
	for _, url := range d.order {
		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, d.blocks[url]...)
	}

	return strings.Join(out, "\n")
}

// Serialize is Reconstruct terminated by a newline, the form written to disk.
// A document whose last line is blank is not terminated again, so one
// trailing blank line folds into the final newline. That blank is usually
// the separator left behind by a removed block.
func (d *Document) Serialize() string {
	text := d.Reconstruct()
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}

// AddOrUpdateSubscription replaces the block for url with one built from
// rawContent. An existing block keeps its position.
func (d *Document) AddOrUpdateSubscription(url, rawContent string, now time.Time) {
	d.setBlock(url, BuildBlock(url, rawContent, now))
}

// RemoveSubscription drops the block for url and reports whether it existed.
func (d *Document) RemoveSubscription(url string) bool {
	if _, ok := d.blocks[url]; !ok {
		return false
	}
	delete(d.blocks, url)
	for i, u := range d.order {
		if u == url {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// URLs returns the subscription URLs in block order.
func (d *Document) URLs() []string {
	urls := make([]string, len(d.order))
	copy(urls, d.order)
	return urls
}

// HasSubscription reports whether a block for url exists.
func (d *Document) HasSubscription(url string) bool {
	_, ok := d.blocks[url]
	return ok
}

// Block returns a copy of the raw lines of the block for url.
func (d *Document) Block(url string) ([]string, bool) {
	lines, ok := d.blocks[url]
	if !ok {
		return nil, false
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out, true
}

// Entries returns the host entries of a block: every line that is not a
// marker, a comment or blank.
func (d *Document) Entries(url string) []string {
	var entries []string
	for _, line := range d.blocks[url] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		entries = append(entries, trimmed)
	}
	return entries
}

// FreeContent returns a copy of the lines outside any block.
func (d *Document) FreeContent() []string {
	out := make([]string, len(d.free))
	copy(out, d.free)
	return out
}

// Len returns the number of subscription blocks.
func (d *Document) Len() int {
	return len(d.order)
}

func (d *Document) setBlock(url string, lines []string) {
	if _, ok := d.blocks[url]; !ok {
		d.order = append(d.order, url)
	}
	d.blocks[url] = lines
}

// BuildBlock returns the lines of a subscription block for url. Blank and
// comment lines of rawContent are dropped and the rest are trimmed.
func BuildBlock(url, rawContent string, now time.Time) []string {
	block := []string{
		StartMarker(url),
		fmt.Sprintf(timestampFormat, now.UTC().Unix()),
		"",
	}
	block = append(block, FilterContent(rawContent)...)
	block = append(block, "", EndMarker(url))
	return block
}

// FilterContent returns the trimmed, non-blank, non-comment lines of content.
func FilterContent(content string) []string {
	var lines []string
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// StartMarker returns the line that opens the block for url.
func StartMarker(url string) string {
	return StartPrefix + url + MarkerSuffix
}

// EndMarker returns the line that closes the block for url.
func EndMarker(url string) string {
	return EndPrefix + url + MarkerSuffix
}

func startMarkerURL(line string) (string, bool) {
	if !strings.HasPrefix(line, StartPrefix) || !strings.HasSuffix(line, MarkerSuffix) {
		return "", false
	}
	if len(line) < len(StartPrefix)+len(MarkerSuffix) {
		return "", false
	}
	return line[len(StartPrefix) : len(line)-len(MarkerSuffix)], true
}

func isEndMarker(line string) bool {
	return strings.HasPrefix(line, EndPrefix) &&
		strings.HasSuffix(line, MarkerSuffix) &&
		len(line) >= len(EndPrefix)+len(MarkerSuffix)
}

// splitLines splits on "\n", tolerating "\r\n" and a single trailing newline.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
