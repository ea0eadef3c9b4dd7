// Package testutil provides test doubles shared across hostsub packages:
// a fault-injecting filesystem and fakes for the downloader and the
// privilege check.
//
// testutil imports nothing but leaf packages so that internal tests of
// any package can use it. Whole-environment fixtures that need pkg/core
// live in pkg/testutil/testenv.
package testutil
