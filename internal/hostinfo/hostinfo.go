// Package hostinfo reads the identity of the machine and user a scan
// ran as, so a report can be attributed without the reader having to
// trust an unsigned filename or take the operator's word for it
// (§ SUPPLEMENTED FEATURES "Host/user scan context"). It is deliberately
// a leaf package (no internal imports) so both cmd/espc and
// internal/batch can depend on it without an import cycle.
package hostinfo

import (
	"os"
	"os/user"
	"runtime"
)

// Host records the machine a scan ran on.
type Host struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
}

// User records the identity a scan ran as.
type User struct {
	Username string `json:"username"`
}

// CurrentHost reads the running host's identity. Hostname is left empty
// if os.Hostname fails (e.g. a sandboxed environment with no hostname
// configured) rather than treating that as fatal.
func CurrentHost() Host {
	hostname, _ := os.Hostname()
	return Host{Hostname: hostname, OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// CurrentUser reads the invoking user's identity. Username is left empty
// if it cannot be resolved (e.g. no passwd entry, as can happen inside
// minimal containers).
func CurrentUser() User {
	u, err := user.Current()
	if err != nil {
		return User{}
	}
	return User{Username: u.Username}
}
