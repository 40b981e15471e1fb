package vaultdir

import (
	"io/fs"
	"os"
)

// checkedRename refuses an existing dst before renaming. It is not atomic
// and is only used where the platform has no exclusive rename.
func checkedRename(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	}
	return os.Rename(src, dst)
}
