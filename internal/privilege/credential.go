package privilege

import (
	"fmt"
	"os/user"
	"strconv"

	"github.com/NielsdaWheelz/governor/internal/exec"
)

// LookupCredential resolves username to the uid, primary gid and
// supplementary groups a child process should run with.
func LookupCredential(username string) (*exec.Credential, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return nil, err
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("account %q has non-numeric uid %q", username, u.Uid)
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("account %q has non-numeric gid %q", username, u.Gid)
	}

	cred := &exec.Credential{UID: uint32(uid), GID: uint32(gid)}
	groupIDs, err := u.GroupIds()
	if err != nil {
		// Not every platform can enumerate groups; the primary gid still applies.
		return cred, nil
	}
	for _, g := range groupIDs {
		n, err := strconv.ParseUint(g, 10, 32)
		if err != nil {
			continue
		}
		cred.Groups = append(cred.Groups, uint32(n))
	}
	return cred, nil
}
