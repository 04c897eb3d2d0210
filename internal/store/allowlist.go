package store

import "sort"

// Job is the registration record for one allowlisted job.
// Field names are the persisted contract shared with the daemon-cli front end.
type Job struct {
	// Path is the canonical (absolute, symlink-free) location of the job file
	// at registration time.
	Path string `json:"path"`

	// Fingerprint is the lowercase hex SHA-256 of the file content at
	// registration time. It is the sole trust anchor for later runs.
	Fingerprint string `json:"hash"`

	// RunAs is the account the job is meant to run as.
	RunAs string `json:"run_as"`
}

// Allowlist maps job names to their registration records.
type Allowlist struct {
	Scripts map[string]Job `json:"scripts"`
}

// NewAllowlist returns an empty allowlist.
func NewAllowlist() *Allowlist {
	return &Allowlist{Scripts: map[string]Job{}}
}

// Get returns the record registered under name.
func (a *Allowlist) Get(name string) (Job, bool) {
	if a == nil || a.Scripts == nil {
		return Job{}, false
	}
	job, ok := a.Scripts[name]
	return job, ok
}

// Put inserts or fully replaces the record for name.
func (a *Allowlist) Put(name string, job Job) {
	if a.Scripts == nil {
		a.Scripts = map[string]Job{}
	}
	a.Scripts[name] = job
}

// Delete removes name and reports whether it was present.
func (a *Allowlist) Delete(name string) bool {
	if _, ok := a.Get(name); !ok {
		return false
	}
	delete(a.Scripts, name)
	return true
}

// Names returns registered job names in sorted order.
func (a *Allowlist) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.Scripts))
	for name := range a.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered jobs.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Scripts)
}
