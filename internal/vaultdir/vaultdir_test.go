package vaultdir

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/illarion/cloak/internal/storage"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	base := t.TempDir()
	d, err := Open(filepath.Join(base, "vault"), filepath.Join(base, "staging"))
	if err != nil {
		t.Fatalf("Failed to open vault dir: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpen_CreatesRoot(t *testing.T) {
	d := newTestDir(t)

	info, err := os.Stat(d.Root())
	if err != nil {
		t.Fatalf("Vault root missing: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("Vault root is not a directory")
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("Vault root permissions: got %o, want 0700", info.Mode().Perm())
	}
	if !filepath.IsAbs(d.Root()) {
		t.Errorf("Root should be absolute, got %s", d.Root())
	}
}

func TestOpen_RejectsSameStaging(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir, dir); err == nil {
		t.Error("Expected error when staging equals vault root")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{"uuid", "0b9e8d3c-1f6a-4a53-9f0c-9d1e4b7f6a21", false},
		{"encrypted name", "report.pdf.enc", false},
		{"hidden file", ".env.enc", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"parent escape", "../x", true},
		{"nested", "a/b", true},
		{"absolute", "/etc/passwd", true},
		{"manifest", storage.ManifestFile, true},
		{"manifest temp", ".manifest-123.tmp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.shouldErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("Expected ErrInvalidName for %q, got %v", tt.input, err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}

func TestCreate_Exclusive(t *testing.T) {
	d := newTestDir(t)

	f, err := d.Create("secret.txt.enc")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.Write([]byte("blob")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	f.Close()

	_, err = d.Create("secret.txt.enc")
	if !errors.Is(err, ErrNameCollision) {
		t.Fatalf("Expected ErrNameCollision, got %v", err)
	}

	// Original content untouched
	data, err := d.ReadFile("secret.txt.enc")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "blob" {
		t.Errorf("Content changed: %q", data)
	}
}

func TestExistsAndRemove(t *testing.T) {
	d := newTestDir(t)

	exists, err := d.Exists("a")
	if err != nil || exists {
		t.Fatalf("Expected missing object, got exists=%v err=%v", exists, err)
	}

	f, err := d.Create("a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.Close()

	exists, err = d.Exists("a")
	if err != nil || !exists {
		t.Fatalf("Expected object, got exists=%v err=%v", exists, err)
	}

	if err := d.Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := d.Exists("a"); exists {
		t.Error("Object still exists after Remove")
	}
}

func TestList_SkipsManifest(t *testing.T) {
	d := newTestDir(t)

	for _, name := range []string{"b.enc", "a-uuid"} {
		f, err := d.Create(name)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		f.Close()
	}
	if err := storage.NewManifest(d.Root()).Save(nil); err != nil {
		t.Fatalf("Save manifest failed: %v", err)
	}

	names, err := d.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a-uuid" || names[1] != "b.enc" {
		t.Errorf("Unexpected list: %v", names)
	}
}

func TestMoveInOut_File(t *testing.T) {
	d := newTestDir(t)
	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, []byte("pixels"), 0640); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	if err := d.MoveIn(src, "obj"); err != nil {
		t.Fatalf("MoveIn failed: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Source should be gone after MoveIn")
	}

	dst := filepath.Join(t.TempDir(), "new", "parent", "photo.jpg")
	if err := d.MoveOut("obj", dst); err != nil {
		t.Fatalf("MoveOut failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Destination missing: %v", err)
	}
	if string(data) != "pixels" {
		t.Errorf("Content mismatch: %q", data)
	}
	if exists, _ := d.Exists("obj"); exists {
		t.Error("Vault object should be gone after MoveOut")
	}
}

func TestMoveIn_Collision(t *testing.T) {
	d := newTestDir(t)
	f, err := d.Create("obj")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.Close()

	src := filepath.Join(t.TempDir(), "x")
	if err := os.WriteFile(src, []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	if err := d.MoveIn(src, "obj"); !errors.Is(err, ErrNameCollision) {
		t.Fatalf("Expected ErrNameCollision, got %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("Source must stay in place after a collision")
	}
}

func TestMoveOut_DestinationExists(t *testing.T) {
	d := newTestDir(t)
	src := filepath.Join(t.TempDir(), "x")
	if err := os.WriteFile(src, []byte("hidden"), 0600); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
	if err := d.MoveIn(src, "obj"); err != nil {
		t.Fatalf("MoveIn failed: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "taken")
	if err := os.WriteFile(dst, []byte("other"), 0600); err != nil {
		t.Fatalf("Failed to write destination: %v", err)
	}

	if err := d.MoveOut("obj", dst); err == nil {
		t.Fatal("Expected error when destination exists")
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "other" {
		t.Error("Existing destination was overwritten")
	}
}

func TestCopyTree_Directory(t *testing.T) {
	src := filepath.Join(t.TempDir(), "album")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0644)
	os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("b"), 0600)

	dst := filepath.Join(t.TempDir(), "copy")
	if err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree failed: %v", err)
	}

	for rel, want := range map[string]string{"a.txt": "a", "sub/b.txt": "b"} {
		data, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(rel)))
		if err != nil {
			t.Errorf("Missing %s: %v", rel, err)
			continue
		}
		if string(data) != want {
			t.Errorf("%s: got %q, want %q", rel, data, want)
		}
	}

	info, err := os.Stat(filepath.Join(dst, "sub", "b.txt"))
	if err == nil && info.Mode().Perm() != 0600 {
		t.Errorf("Permissions not preserved: %o", info.Mode().Perm())
	}
}

func TestStagingLifecycle(t *testing.T) {
	d := newTestDir(t)

	path, err := d.StagingDir(false)
	if err != nil {
		t.Fatalf("StagingDir failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("Staging dir should not exist before create")
	}

	path, err = d.StagingDir(true)
	if err != nil {
		t.Fatalf("StagingDir(create) failed: %v", err)
	}
	os.WriteFile(filepath.Join(path, "preview.txt"), []byte("plain"), 0600)

	d.PurgeStaging()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Staging dir should be gone after purge")
	}

	// Purging a missing directory is fine
	d.PurgeStaging()
}

func TestRemoveAll_Directory(t *testing.T) {
	d := newTestDir(t)
	src := filepath.Join(t.TempDir(), "dir")
	os.MkdirAll(filepath.Join(src, "nested"), 0700)
	os.WriteFile(filepath.Join(src, "nested", "f"), []byte("f"), 0600)

	if err := d.MoveIn(src, "obj"); err != nil {
		t.Fatalf("MoveIn failed: %v", err)
	}
	if err := d.RemoveAll("obj"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if exists, _ := d.Exists("obj"); exists {
		t.Error("Directory object still present")
	}
}

func TestOverlaps(t *testing.T) {
	d := newTestDir(t)
	base := filepath.Dir(d.Root())
	outside := t.TempDir()

	link := filepath.Join(outside, "vault-link")
	if err := os.Symlink(d.Root(), link); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"vault root", d.Root(), true},
		{"vault object", d.Path("some-uuid"), true},
		{"manifest", d.Path("manifest.json"), true},
		{"nested in object", filepath.Join(d.Root(), "dir-obj", "inner.txt"), true},
		{"staging", filepath.Join(base, "staging"), true},
		{"inside staging", filepath.Join(base, "staging", "report.pdf"), true},
		{"parent of both", base, true},
		{"through symlinked parent", filepath.Join(link, "some-uuid"), true},
		{"the symlink itself", link, false},
		{"sibling with common prefix", filepath.Join(base, "vault2", "x"), false},
		{"unrelated", filepath.Join(outside, "notes.txt"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Overlaps(tt.path)
			if err != nil {
				t.Fatalf("Overlaps failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Overlaps(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMove_NeverReplaces(t *testing.T) {
	dir := t.TempDir()

	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	os.WriteFile(src, []byte("new"), 0600)
	os.WriteFile(dst, []byte("old"), 0600)

	if err := move(src, dst); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("Expected fs.ErrExist, got %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "old" {
		t.Errorf("Destination replaced: %q", data)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("Source lost: %v", err)
	}

	// rename(2) would replace an empty directory
	srcDir := filepath.Join(dir, "srcdir")
	dstDir := filepath.Join(dir, "dstdir")
	os.Mkdir(srcDir, 0700)
	os.Mkdir(dstDir, 0700)
	if err := move(srcDir, dstDir); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("Expected fs.ErrExist for directory, got %v", err)
	}
	if _, err := os.Stat(srcDir); err != nil {
		t.Errorf("Source directory lost: %v", err)
	}
}

func TestCopyTree_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	os.WriteFile(src, []byte("new"), 0600)
	os.WriteFile(dst, []byte("old"), 0600)

	if err := CopyTree(src, dst); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("Expected fs.ErrExist, got %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "old" {
		t.Errorf("Destination overwritten: %q", data)
	}
}
