// Package vaultdir manages the vault root and the staging directory.
//
// Every access to a vault object goes through an os.Root opened on the vault
// root, so a stored name can never resolve outside it.
package vaultdir

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/illarion/cloak/internal/logger"
	"github.com/illarion/cloak/internal/storage"
)

var (
	ErrNameCollision = errors.New("vault object already exists")
	ErrInvalidName   = errors.New("invalid stored name")
)

// Dir is the vault root plus its staging directory.
type Dir struct {
	root    *os.Root
	path    string
	staging string
	log     *logger.Logger
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger used for swallowed errors.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dir) { d.log = l.Component("vaultdir") }
}

// Open creates the vault root (0700) if needed and opens it. The staging
// directory is created lazily by StagingDir.
func Open(root, staging string, opts ...Option) (*Dir, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	absStaging, err := filepath.Abs(staging)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if absStaging == absRoot {
		return nil, fmt.Errorf("staging directory must differ from vault root")
	}

	if err := os.MkdirAll(absRoot, 0700); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}
	// MkdirAll keeps existing permissions; tighten them
	if err := os.Chmod(absRoot, 0700); err != nil {
		return nil, fmt.Errorf("failed to restrict vault root: %w", err)
	}

	r, err := os.OpenRoot(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault root: %w", err)
	}

	d := &Dir{
		root:    r,
		path:    absRoot,
		staging: absStaging,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Close releases the root handle.
func (d *Dir) Close() error {
	if d.root != nil {
		return d.root.Close()
	}
	return nil
}

// Root returns the absolute vault root path.
func (d *Dir) Root() string {
	return d.path
}

// Path returns the absolute path of a vault object.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, name)
}

// ValidateName checks that name is a single local path element and does
// not clash with the manifest.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if storage.IsManifestFile(name) {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// StagingDir returns the staging directory path, creating it (0700) when
// create is set.
func (d *Dir) StagingDir(create bool) (string, error) {
	if create {
		if err := os.MkdirAll(d.staging, 0700); err != nil {
			return "", fmt.Errorf("failed to create staging directory: %w", err)
		}
	}
	return d.staging, nil
}

// PurgeStaging removes the staging directory and everything in it. Errors
// are logged and otherwise ignored.
func (d *Dir) PurgeStaging() {
	if err := os.RemoveAll(d.staging); err != nil {
		d.log.Debug().Err(err).Str("path", d.staging).Msg("staging purge failed")
	}
}

// Create exclusively creates a vault object for writing.
func (d *Dir) Create(name string) (*os.File, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	f, err := d.root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrNameCollision, name)
		}
		return nil, err
	}
	return f, nil
}

// Exists reports whether a vault object exists.
func (d *Dir) Exists(name string) (bool, error) {
	_, err := d.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Stat returns file info for a vault object without following symlinks.
func (d *Dir) Stat(name string) (os.FileInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return d.root.Lstat(name)
}

// ReadFile reads a vault object.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return d.root.ReadFile(name)
}

// Remove removes a vault file.
func (d *Dir) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return d.root.Remove(name)
}

// RemoveAll removes a vault object and, for directories, its contents.
func (d *Dir) RemoveAll(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return d.root.RemoveAll(name)
}

// List returns the names of all vault objects, excluding the manifest.
func (d *Dir) List() ([]string, error) {
	entries, err := fs.ReadDir(d.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list vault: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if storage.IsManifestFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Overlaps reports whether path is the vault root or the staging directory,
// lies inside one of them, or contains one of them. Symlinks in the parent
// directories are resolved; the last element is not followed, matching how
// MoveIn treats a symlink source.
func (d *Dir) Overlaps(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	p := filepath.Join(resolve(filepath.Dir(abs)), filepath.Base(abs))

	for _, dir := range []string{d.path, d.staging} {
		r := resolve(dir)
		if within(p, r) || within(r, p) {
			return true, nil
		}
	}
	return false, nil
}

// resolve evaluates symlinks in path. Missing trailing elements are kept as
// they are and only the nearest existing ancestor is resolved.
func resolve(path string) string {
	path = filepath.Clean(path)
	var rest []string
	for {
		if r, err := filepath.EvalSymlinks(path); err == nil {
			return filepath.Join(append([]string{r}, rest...)...)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return filepath.Join(append([]string{path}, rest...)...)
		}
		rest = append([]string{filepath.Base(path)}, rest...)
		path = parent
	}
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// MoveIn moves src (file or directory) into the vault under name.
func (d *Dir) MoveIn(src, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	exists, err := d.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrNameCollision, name)
	}

	if err := move(src, d.Path(name)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrNameCollision, name)
		}
		return err
	}
	return nil
}

// MoveOut moves the vault object name to dst. Missing parent directories of
// dst are created with 0700.
func (d *Dir) MoveOut(name, dst string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", fs.ErrExist, dst)
	}

	return move(d.Path(name), dst)
}

// move renames src to dst without ever replacing an existing dst, falling
// back to copy and remove when they sit on different filesystems. An
// existing dst is reported as fs.ErrExist.
func move(src, dst string) error {
	err := renameNoReplace(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := CopyTree(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		os.RemoveAll(dst)
		return fmt.Errorf("cross-device copy failed: %w", err)
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

// CopyTree copies a regular file or a directory tree from src to dst,
// preserving permission bits. Symlinks are recreated, not followed. Nothing
// existing at dst is overwritten.
func CopyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)

	case info.IsDir():
		if err := os.Mkdir(dst, info.Mode().Perm()|0700); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := CopyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
				return err
			}
		}
		return nil

	case info.Mode().IsRegular():
		return copyFile(src, dst, info.Mode().Perm())

	default:
		return fmt.Errorf("unsupported file type: %s", src)
	}
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
