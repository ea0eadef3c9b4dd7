// Package hostsfile converts hosts file text to and from a Document of
// free content plus URL-keyed subscription blocks.
//
// A subscription block looks like this on disk:
//
//	# === hostsub subscription: https://example.com/hosts ===
//	# subscribed at: 1700000000 (UTC timestamp)
//
//	1.2.3.4 example.test
//
//	# === end hostsub subscription: https://example.com/hosts ===
//
// Parsing never fails. The hosts file is shared with the user and other
// tools, and anything that does not form a marker pair is kept untouched as
// free content.
package hostsfile
