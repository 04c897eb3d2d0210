// Package privilege models the elevated-identity check as an explicit
// capability. The check runs once at process start; operations that mutate
// the allowlist take the resulting Elevated value as a parameter instead of
// querying the process identity themselves.
package privilege

import (
	"os"
	"os/user"
	"strconv"

	"github.com/NielsdaWheelz/governor/internal/errors"
)

// RootUID is the uid of the privileged account.
const RootUID = 0

// DefaultRootName is used when the account database cannot name uid 0.
const DefaultRootName = "root"

// InvokingUserEnv is set by sudo to the account that ran it.
const InvokingUserEnv = "SUDO_USER"

// Identity provides the process identity signals governor consumes.
type Identity interface {
	// EffectiveUID returns the effective uid of the current process.
	EffectiveUID() int
	// InvokingUser returns the account that escalated into this process,
	// or "" if the process was not started through sudo.
	InvokingUser() string
	// Username returns the account name for uid.
	Username(uid int) (string, error)
}

// OSIdentity reads the identity of the running process.
type OSIdentity struct{}

// EffectiveUID implements Identity.
func (OSIdentity) EffectiveUID() int { return os.Geteuid() }

// InvokingUser implements Identity.
func (OSIdentity) InvokingUser() string { return os.Getenv(InvokingUserEnv) }

// RealUID returns the real uid of the current process.
func (OSIdentity) RealUID() int { return os.Getuid() }

// Username implements Identity.
func (OSIdentity) Username(uid int) (string, error) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// Delegated reports whether the process holds root on behalf of another
// account: a sudo escalation by an ordinary user, or a setuid-root binary
// started by one. The invoker of such a process controls its environment and
// arguments, which must not be allowed to relocate governor's state.
func Delegated(id Identity) bool {
	if id.EffectiveUID() != RootUID {
		return false
	}
	if u := id.InvokingUser(); u != "" && u != DefaultRootName {
		return true
	}
	if r, ok := id.(interface{ RealUID() int }); ok && r.RealUID() != RootUID {
		return true
	}
	return false
}

// Elevated is proof that the process was running with the privileged
// identity when Acquire was called. The zero value is not valid.
type Elevated struct {
	valid        bool
	rootName     string
	invokingUser string
}

// Valid reports whether the capability was minted by Acquire.
func (e Elevated) Valid() bool { return e.valid }

// RootName returns the account name of the privileged identity.
func (e Elevated) RootName() string { return e.rootName }

// InvokingUser returns the account that escalated via sudo, or "".
func (e Elevated) InvokingUser() string { return e.invokingUser }

// RunAs returns the identity a job registered under this capability should
// run as: the invoking sudo user when present, otherwise the privileged account.
func (e Elevated) RunAs() string {
	if e.invokingUser != "" {
		return e.invokingUser
	}
	return e.rootName
}

// Acquire checks the effective identity and mints an Elevated capability.
// Returns E_INSUFFICIENT_PRIVILEGE when the process is not running as root.
func Acquire(id Identity) (Elevated, error) {
	uid := id.EffectiveUID()
	if uid != RootUID {
		return Elevated{}, errors.NewWithDetails(errors.EInsufficientPrivilege,
			"this operation requires root privileges; re-run with sudo",
			map[string]string{"uid": strconv.Itoa(uid)},
		)
	}

	rootName, err := id.Username(RootUID)
	if err != nil || rootName == "" {
		rootName = DefaultRootName
	}

	return Elevated{
		valid:        true,
		rootName:     rootName,
		invokingUser: id.InvokingUser(),
	}, nil
}

// Require returns E_INSUFFICIENT_PRIVILEGE unless elev is a valid capability.
// op names the guarded operation for error context.
func Require(elev Elevated, op string) error {
	if elev.Valid() {
		return nil
	}
	return errors.NewWithDetails(errors.EInsufficientPrivilege,
		op+" requires root privileges; re-run with sudo",
		map[string]string{"op": op},
	)
}

// ForTesting mints a capability without checking the process identity.
// It exists so tests can exercise privileged operations as an ordinary user.
func ForTesting(rootName, invokingUser string) Elevated {
	return Elevated{valid: true, rootName: rootName, invokingUser: invokingUser}
}
