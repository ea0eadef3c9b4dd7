// Package validation checks subscription URLs before they are fetched and
// downloaded content before it is merged into the hosts file.
//
// URL checks are strict: only http and https with a well formed host are
// accepted. Content checks are lenient: a download is rejected only when it
// has nothing usable at all, and a low share of valid "IP hostname" lines
// is reported as a warning rather than an error.
package validation
