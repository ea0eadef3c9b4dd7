// Package privilege checks that the process may modify the hosts file
// before any mutating command starts.
package privilege

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/logging"
)

const sudoCheckTimeout = 5 * time.Second

// Checker is invoked before every mutating entry point.
type Checker interface {
	EnsureElevated() error
}

// System checks the real process credentials.
type System struct {
	// Target is the file that will be written. When the current user can
	// already open it for writing no elevation is needed.
	Target string

	geteuid   func() int
	writable  func(path string) bool
	sudoCheck func() error
}

// NewSystem returns a Checker for target.
func NewSystem(target string) *System {
	return &System{
		Target:    target,
		geteuid:   os.Geteuid,
		writable:  canWrite,
		sudoCheck: sudoNonInteractive,
	}
}

// EnsureElevated passes for root, for a target the user can already write,
// and for users with passwordless sudo.
func (s *System) EnsureElevated() error {
	logger := logging.GetLogger("privilege")

	if s.geteuid() == 0 {
		logger.Debug().Msg("Running as root")
		return nil
	}
	if s.Target != "" && s.writable(s.Target) {
		logger.Debug().Str("target", s.Target).Msg("Target is writable without elevation")
		return nil
	}
	if err := s.sudoCheck(); err != nil {
		logger.Debug().Err(err).Msg("sudo check failed")
		return errors.Newf(errors.ErrPermission, "modifying %s requires root privileges, run with sudo", s.Target).
			WithDetail("target", s.Target)
	}

	logger.Debug().Msg("sudo available")
	return nil
}

func canWrite(path string) bool {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

func sudoNonInteractive() error {
	ctx, cancel := context.WithTimeout(context.Background(), sudoCheckTimeout)
	defer cancel()
	return exec.CommandContext(ctx, "sudo", "-n", "true").Run()
}
