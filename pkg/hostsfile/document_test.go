// pkg/hostsfile/document_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Parsing, reconstruction and block mutation of hosts documents

package hostsfile_test

import (
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/hostsub/pkg/hostsfile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	urlA = "https://example.com/hosts"
	urlB = "https://lists.example.org/ads.txt"
	urlC = "http://mirror.example.net/hosts"
)

var (
	t0 = time.Unix(1700000000, 0)
	t1 = time.Unix(1700000060, 0)
)

func lines(s ...string) string {
	return strings.Join(s, "\n")
}

func TestParse_FreeContentOnly(t *testing.T) {
	text := lines("127.0.0.1 localhost", "# my comment", "", "::1 localhost")
	doc := hostsfile.Parse(text)

	assert.Equal(t, 0, doc.Len())
	assert.Equal(t, []string{"127.0.0.1 localhost", "# my comment", "", "::1 localhost"}, doc.FreeContent())
	assert.Equal(t, text, doc.Reconstruct())
}

func TestParse_Empty(t *testing.T) {
	doc := hostsfile.Parse("")
	assert.Equal(t, 0, doc.Len())
	assert.Empty(t, doc.FreeContent())
	assert.Equal(t, "", doc.Reconstruct())
	assert.Equal(t, "", doc.Serialize())
}

func TestParse_Blocks(t *testing.T) {
	text := lines(
		"127.0.0.1 localhost",
		"",
		hostsfile.StartMarker(urlA),
		"# subscribed at: 1 (UTC timestamp)",
		"",
		"1.2.3.4 a.test",
		"",
		hostsfile.EndMarker(urlA),
		"",
		hostsfile.StartMarker(urlB),
		"5.6.7.8 b.test",
		hostsfile.EndMarker(urlB),
	)

	doc := hostsfile.Parse(text)

	require.Equal(t, 2, doc.Len())
	assert.Equal(t, []string{urlA, urlB}, doc.URLs())
	assert.Equal(t, []string{"127.0.0.1 localhost", ""}, doc.FreeContent())
	assert.Equal(t, []string{"1.2.3.4 a.test"}, doc.Entries(urlA))
	assert.Equal(t, []string{"5.6.7.8 b.test"}, doc.Entries(urlB))

	block, ok := doc.Block(urlB)
	require.True(t, ok)
	assert.Equal(t, []string{hostsfile.StartMarker(urlB), "5.6.7.8 b.test", hostsfile.EndMarker(urlB)}, block)

	assert.Equal(t, text, doc.Reconstruct(), "well-formed file reproduces byte for byte")
}

func TestParse_CRLF(t *testing.T) {
	text := "127.0.0.1 localhost\r\n" + hostsfile.StartMarker(urlA) + "\r\n1.1.1.1 x\r\n" + hostsfile.EndMarker(urlA) + "\r\n"
	doc := hostsfile.Parse(text)

	require.True(t, doc.HasSubscription(urlA))
	assert.Equal(t, []string{"1.1.1.1 x"}, doc.Entries(urlA))
	assert.Equal(t, []string{"127.0.0.1 localhost"}, doc.FreeContent())
}

func TestParse_Tolerance(t *testing.T) {
	t.Run("end marker without start is free content", func(t *testing.T) {
		stray := hostsfile.EndMarker(urlA)
		text := lines("127.0.0.1 localhost", stray, "10.0.0.1 box")

		doc := hostsfile.Parse(text)

		assert.Equal(t, 0, doc.Len())
		assert.Contains(t, doc.FreeContent(), stray)
		assert.Equal(t, text, doc.Reconstruct())
	})

	t.Run("block open at end of input is kept", func(t *testing.T) {
		doc := hostsfile.Parse(lines("127.0.0.1 localhost", hostsfile.StartMarker(urlA), "1.2.3.4 a.test"))

		require.True(t, doc.HasSubscription(urlA))
		block, _ := doc.Block(urlA)
		assert.Equal(t, []string{hostsfile.StartMarker(urlA), "1.2.3.4 a.test"}, block)
		assert.Equal(t, []string{"127.0.0.1 localhost"}, doc.FreeContent())
	})

	t.Run("start marker inside open block starts a new block", func(t *testing.T) {
		doc := hostsfile.Parse(lines(
			hostsfile.StartMarker(urlA), "1.1.1.1 a",
			hostsfile.StartMarker(urlB), "2.2.2.2 b", hostsfile.EndMarker(urlB),
		))

		assert.Equal(t, []string{urlA, urlB}, doc.URLs())
		assert.Equal(t, []string{"1.1.1.1 a"}, doc.Entries(urlA))
		assert.Equal(t, []string{"2.2.2.2 b"}, doc.Entries(urlB))
	})

	t.Run("mismatched end url still closes the open block", func(t *testing.T) {
		doc := hostsfile.Parse(lines(hostsfile.StartMarker(urlA), "1.1.1.1 a", hostsfile.EndMarker(urlB), "9.9.9.9 free"))

		assert.Equal(t, []string{urlA}, doc.URLs())
		assert.Equal(t, []string{"9.9.9.9 free"}, doc.FreeContent())
	})

	t.Run("duplicate url keeps one block", func(t *testing.T) {
		doc := hostsfile.Parse(lines(
			hostsfile.StartMarker(urlA), "1.1.1.1 first", hostsfile.EndMarker(urlA),
			hostsfile.StartMarker(urlA), "2.2.2.2 second", hostsfile.EndMarker(urlA),
		))

		assert.Equal(t, 1, doc.Len())
		assert.Equal(t, []string{"2.2.2.2 second"}, doc.Entries(urlA))
	})

	t.Run("marker lookalikes are free content", func(t *testing.T) {
		text := lines("# === hostsub subscription: missing suffix", "#=== end hostsub subscription: x ===")
		doc := hostsfile.Parse(text)
		assert.Equal(t, 0, doc.Len())
		assert.Equal(t, text, doc.Reconstruct())
	})
}

func TestReconstruct_Separators(t *testing.T) {
	doc := hostsfile.Parse("127.0.0.1 localhost")
	doc.AddOrUpdateSubscription(urlA, "1.1.1.1 a", t0)
	doc.AddOrUpdateSubscription(urlB, "2.2.2.2 b", t0)

	got := doc.Reconstruct()
	want := lines(
		"127.0.0.1 localhost",
		"",
		hostsfile.StartMarker(urlA),
		"# subscribed at: 1700000000 (UTC timestamp)",
		"",
		"1.1.1.1 a",
		"",
		hostsfile.EndMarker(urlA),
		"",
		hostsfile.StartMarker(urlB),
		"# subscribed at: 1700000000 (UTC timestamp)",
		"",
		"2.2.2.2 b",
		"",
		hostsfile.EndMarker(urlB),
	)
	assert.Equal(t, want, got)

	t.Run("no separator after a blank free line", func(t *testing.T) {
		doc := hostsfile.Parse("127.0.0.1 localhost\n\n")
		doc.AddOrUpdateSubscription(urlA, "1.1.1.1 a", t0)
		assert.True(t, strings.HasPrefix(doc.Reconstruct(), "127.0.0.1 localhost\n\n"+hostsfile.StartMarker(urlA)))
	})

	t.Run("no leading separator without free content", func(t *testing.T) {
		doc := hostsfile.New()
		doc.AddOrUpdateSubscription(urlA, "1.1.1.1 a", t0)
		assert.True(t, strings.HasPrefix(doc.Reconstruct(), hostsfile.StartMarker(urlA)))
	})
}

func TestRoundTrip(t *testing.T) {
	docs := map[string]func() *hostsfile.Document{
		"free and three blocks": func() *hostsfile.Document {
			d := hostsfile.Parse(lines("127.0.0.1 localhost", "# keep me", "::1 ip6-localhost"))
			d.AddOrUpdateSubscription(urlA, "1.1.1.1 a\n# c\n", t0)
			d.AddOrUpdateSubscription(urlB, "2.2.2.2 b\n\n3.3.3.3 c", t0)
			d.AddOrUpdateSubscription(urlC, "", t0)
			return d
		},
		"blocks only": func() *hostsfile.Document {
			d := hostsfile.New()
			d.AddOrUpdateSubscription(urlB, "2.2.2.2 b", t0)
			d.AddOrUpdateSubscription(urlA, "1.1.1.1 a", t0)
			return d
		},
		"free content with blank lines": func() *hostsfile.Document {
			d := hostsfile.Parse(lines("", "127.0.0.1 localhost", "", ""))
			d.AddOrUpdateSubscription(urlA, "1.1.1.1 a", t0)
			return d
		},
	}

	trimBlank := func(in []string) []string {
		for len(in) > 0 && in[len(in)-1] == "" {
			in = in[:len(in)-1]
		}
		return in
	}

	for name, build := range docs {
		t.Run(name, func(t *testing.T) {
			doc := build()
			text := doc.Reconstruct()
			parsed := hostsfile.Parse(text)

			assert.Equal(t, doc.URLs(), parsed.URLs())
			for _, url := range doc.URLs() {
				want, _ := doc.Block(url)
				got, _ := parsed.Block(url)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("block %s mismatch (-want +got):\n%s", url, diff)
				}
			}
			if diff := cmp.Diff(trimBlank(doc.FreeContent()), trimBlank(parsed.FreeContent())); diff != "" {
				t.Errorf("free content mismatch (-want +got):\n%s", diff)
			}

			// Rewriting a parsed file must be stable, no blank lines piling up.
			again := hostsfile.Parse(parsed.Reconstruct()).Reconstruct()
			assert.Equal(t, parsed.Reconstruct(), again)
		})
	}
}

func TestAddOrUpdateSubscription(t *testing.T) {
	t.Run("filters blank and comment lines", func(t *testing.T) {
		doc := hostsfile.New()
		doc.AddOrUpdateSubscription(urlA, "1.2.3.4 example.test\n# comment\n\n   \n  5.6.7.8   other.test  \n\t# indented comment\n", t0)

		block, ok := doc.Block(urlA)
		require.True(t, ok)
		assert.Equal(t, []string{
			hostsfile.StartMarker(urlA),
			"# subscribed at: 1700000000 (UTC timestamp)",
			"",
			"1.2.3.4 example.test",
			"5.6.7.8   other.test",
			"",
			hostsfile.EndMarker(urlA),
		}, block)
	})

	t.Run("idempotent apart from timestamp", func(t *testing.T) {
		content := "1.2.3.4 a.test\n5.6.7.8 b.test\n"
		first := hostsfile.Parse("127.0.0.1 localhost")
		first.AddOrUpdateSubscription(urlA, content, t0)
		second := hostsfile.Parse(first.Reconstruct())
		second.AddOrUpdateSubscription(urlA, content, t1)

		a := strings.Split(first.Reconstruct(), "\n")
		b := strings.Split(second.Reconstruct(), "\n")
		require.Equal(t, len(a), len(b))

		var differing []int
		for i := range a {
			if a[i] != b[i] {
				differing = append(differing, i)
			}
		}
		require.Len(t, differing, 1)
		assert.Contains(t, a[differing[0]], "1700000000")
		assert.Contains(t, b[differing[0]], "1700000060")
	})

	t.Run("second update replaces the block", func(t *testing.T) {
		doc := hostsfile.New()
		doc.AddOrUpdateSubscription(urlA, "1.1.1.1 old", t0)
		doc.AddOrUpdateSubscription(urlB, "2.2.2.2 b", t0)
		doc.AddOrUpdateSubscription(urlA, "9.9.9.9 new", t1)

		assert.Equal(t, 2, doc.Len())
		assert.Equal(t, []string{urlA, urlB}, doc.URLs(), "position is kept")
		assert.Equal(t, []string{"9.9.9.9 new"}, doc.Entries(urlA))
		assert.Equal(t, 1, strings.Count(doc.Reconstruct(), hostsfile.StartMarker(urlA)))
	})
}

func TestRemoveSubscription(t *testing.T) {
	doc := hostsfile.Parse("127.0.0.1 localhost\n")
	original := doc.Serialize()
	doc.AddOrUpdateSubscription(urlA, "1.1.1.1 a", t0)
	doc.AddOrUpdateSubscription(urlB, "2.2.2.2 b", t0)

	reparsed := hostsfile.Parse(doc.Serialize())
	assert.True(t, reparsed.RemoveSubscription(urlA))
	assert.False(t, reparsed.RemoveSubscription(urlA))
	assert.Equal(t, []string{urlB}, reparsed.URLs())

	assert.True(t, reparsed.RemoveSubscription(urlB))
	assert.Equal(t, original, reparsed.Serialize())
}

func TestSerialize(t *testing.T) {
	doc := hostsfile.New()
	doc.AddOrUpdateSubscription(urlA, "1.1.1.1 a", t0)
	assert.True(t, strings.HasSuffix(doc.Serialize(), hostsfile.EndMarker(urlA)+"\n"))

	withNewline := hostsfile.Parse("127.0.0.1 localhost\n\n")
	assert.Equal(t, "127.0.0.1 localhost\n", withNewline.Serialize(), "one trailing blank folds into the newline")

	twoBlanks := hostsfile.Parse("127.0.0.1 localhost\n\n\n")
	assert.Equal(t, "127.0.0.1 localhost\n\n", twoBlanks.Serialize())
}

func TestFilterContent(t *testing.T) {
	assert.Nil(t, hostsfile.FilterContent("\n# only comments\n   \n"))
	assert.Equal(t, []string{"a b", "c d"}, hostsfile.FilterContent(" a b \r\n#x\nc d"))
}
