package config

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// FixOwnership hands path, and any parent directories between it and the
// user's home directory, to the owner of the home directory. This covers
// running under sudo or in a dev container as uid 0 with a home directory
// that belongs to a regular user.
//
// It is a no-op unless the process runs as root and the home directory is
// owned by someone else.
func FixOwnership(path string) {
	if os.Getuid() != 0 {
		return
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return
	}
	uid, gid, ok := ownerOf(home)
	if !ok || uid == 0 {
		return
	}

	_ = os.Lchown(path, uid, gid)

	for dir := filepath.Dir(path); ; {
		rel, err := filepath.Rel(home, dir)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return
		}
		dUID, _, ok := ownerOf(dir)
		if !ok || dUID == uid {
			return
		}
		_ = os.Lchown(dir, uid, gid)
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func ownerOf(p string) (uid, gid int, ok bool) {
	info, err := os.Stat(p)
	if err != nil {
		return 0, 0, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return int(st.Uid), int(st.Gid), true
}
