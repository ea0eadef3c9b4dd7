// Package types holds the interfaces and result types shared across
// hostsub packages.
//
// Command functions in pkg/commands return the result structs defined here;
// the CLI layer renders them. Keeping them in one leaf package lets the
// commands and the CLI agree on shapes without importing each other.
package types
