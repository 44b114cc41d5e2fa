package yara

import (
	"os"
	"strconv"
	"syscall"
)

// fileOwner resolves the owning username of info, falling back to the
// dummy placeholder when the platform doesn't expose a POSIX uid or the
// uid can't be resolved to a name (§4.5's "owner" external).
func fileOwner(info os.FileInfo) string {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return dummyValue
	}
	return lookupOwner(strconv.FormatUint(uint64(stat.Uid), 10))
}
