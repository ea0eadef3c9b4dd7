// Package core assembles the collaborators every hostsub command needs.
//
// An Environment is built once per process from the resolved configuration
// and threaded through the command functions. Nothing in it is global:
// tests assemble their own Environment over an in-memory filesystem with
// fake downloader and privilege checks.
//
// Assembly order:
//
//	config.Load -> backup.Store -> transaction.Coordinator
//	            -> registry.Load
//	            -> download.HTTP, validation.ContentValidator, privilege.System
package core
