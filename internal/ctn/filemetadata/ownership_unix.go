//go:build !windows

package filemetadata

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
)

// ownerGroup resolves a os.FileInfo's owning user/group names on
// POSIX-like systems; it degrades to "not available" rather than erroring
// when the platform's Sys() shape is unexpected.
func ownerGroup(info os.FileInfo) (owner, group string, ok bool) {
	stat, isStat := info.Sys().(*syscall.Stat_t)
	if !isStat {
		return "", "", false
	}
	u, err := user.LookupId(strconv.FormatUint(uint64(stat.Uid), 10))
	if err != nil {
		return "", "", false
	}
	g, err := user.LookupGroupId(strconv.FormatUint(uint64(stat.Gid), 10))
	if err != nil {
		return u.Username, "", false
	}
	return u.Username, g.Name, true
}
