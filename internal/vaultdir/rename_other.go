//go:build !linux && !darwin

package vaultdir

func renameNoReplace(src, dst string) error {
	return checkedRename(src, dst)
}
