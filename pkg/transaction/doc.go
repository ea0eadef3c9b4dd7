// Package transaction applies one logical change to the hosts file with
// backup, commit and conditional rollback.
//
// A transaction moves through these states:
//
//	Start -> BackedUp -> Applied -> Committed
//	Start/BackedUp/Applied -> RolledBack
//	Start -> Aborted (no backup could be taken, nothing was touched)
//
// The hosts file is written first and the downstream store (the
// subscription registry) second, through Operation.Finalize. When Finalize
// fails the file is restored from the snapshot taken at the start. When
// that restore fails too, both stores disagree and the error carries
// ErrRegistryDesync.
//
// While a transaction runs, an intent record in the state directory says
// which snapshot to go back to. A process that dies halfway leaves the
// record behind and the next transaction resolves it before doing anything
// else. An advisory lock in the backup directory keeps two hostsub
// processes from interleaving.
package transaction
