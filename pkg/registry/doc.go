// Package registry records which URLs the user considers subscribed.
//
// The registry is persisted separately from the hosts file, in a small TOML
// document:
//
//	subscriptions = [
//	  "https://example.com/hosts",
//	]
//
// It is expected to track the subscription blocks of the hosts file, but
// the two can drift apart when an operation fails halfway. pkg/transaction
// orders writes so that drift is either repaired or reported.
package registry
