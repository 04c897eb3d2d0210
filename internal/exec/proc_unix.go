//go:build !windows

package exec

import (
	"os"
	osexec "os/exec"
	"syscall"
)

func configureCredential(cmd *osexec.Cmd, cred *Credential) {
	if cred == nil {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{
			Uid:    cred.UID,
			Gid:    cred.GID,
			Groups: cred.Groups,
		},
	}
}

// terminate asks the job to shut down the way launchd and init systems do.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
