//go:build windows

package exec

import (
	"os"
	osexec "os/exec"
)

// Identity switching is not supported on Windows; the credential is ignored.
func configureCredential(cmd *osexec.Cmd, cred *Credential) {}

// terminate kills the job; Windows has no catchable termination signal.
func terminate(p *os.Process) error {
	return p.Kill()
}
