// Package filesystem provides filesystem implementations for hostsub.
//
// This package contains implementations of the types.FS interface:
// the OS filesystem used in production and an afero-backed one that
// tests run against (usually an in-memory MemMapFs).
package filesystem
