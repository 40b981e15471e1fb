package core

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/illarion/cloak/internal/crypto"
)

const (
	BinarySampleSize   = 8192 // Bytes to sample for text/binary detection
	BinaryThresholdPct = 10   // Max % non-printable chars for text files
)

// Compare diffs the hidden content of an entry against whatever currently
// sits at its original path. It returns "" when they are identical.
func (e *Engine) Compare(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	hidden, err := e.hiddenContent(id)
	if err != nil {
		return "", err
	}
	defer crypto.ClearBytes(hidden.data)

	info, err := os.Stat(hidden.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fileErr("compare", hidden.path, fmt.Errorf("%w: nothing at original path", ErrNotFound))
		}
		return "", fileErr("compare", hidden.path, ioErr(err))
	}
	if !info.Mode().IsRegular() {
		return "", fileErr("compare", hidden.path, ErrUnsupportedType)
	}

	current, err := os.ReadFile(hidden.path)
	if err != nil {
		return "", fileErr("compare", hidden.path, ioErr(err))
	}

	return GenerateUnifiedDiff(hidden.name, hidden.data, current)
}

type hiddenFile struct {
	name string
	path string
	data []byte
}

func (e *Engine) hiddenContent(id string) (hiddenFile, error) {
	if err := e.lock(); err != nil {
		return hiddenFile{}, err
	}
	defer e.opMu.Unlock()

	entry, err := e.find(id)
	if err != nil {
		return hiddenFile{}, err
	}
	out := hiddenFile{name: entry.DisplayName(), path: entry.OriginalPath}

	switch entry.Concealment.(type) {
	case FastHide:
		info, err := e.dir.Stat(entry.StoredName)
		if err != nil {
			return hiddenFile{}, fileErr("compare", entry.OriginalPath, ioErr(err))
		}
		if !info.Mode().IsRegular() {
			return hiddenFile{}, fileErr("compare", entry.OriginalPath, ErrUnsupportedType)
		}
		out.data, err = e.dir.ReadFile(entry.StoredName)
		if err != nil {
			return hiddenFile{}, fileErr("compare", entry.OriginalPath, ioErr(err))
		}
	case Advanced:
		blob, err := e.dir.ReadFile(entry.StoredName)
		if err != nil {
			return hiddenFile{}, fileErr("compare", entry.OriginalPath, ioErr(err))
		}
		c, err := e.cipherLocked()
		if err != nil {
			return hiddenFile{}, err
		}
		out.data, err = c.Open(blob)
		if err != nil {
			return hiddenFile{}, fileErr("compare", entry.OriginalPath, err)
		}
	}
	return out, nil
}

// DetectFileType determines if content is likely text.
//
// Detection heuristic (in order):
//  1. Null bytes present → binary
//  2. Invalid UTF-8 → binary
//  3. >10% non-printable control chars → binary
func DetectFileType(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sample := data[:min(len(data), BinarySampleSize)]

	// a multi-byte rune may be cut at the sample boundary
	if !utf8.Valid(sample) && (len(sample) == len(data) || !utf8.Valid(trimPartialRune(sample))) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' {
			nonPrintable++
		}
		if b == 127 {
			nonPrintable++
		}
	}

	threshold := len(sample) * BinaryThresholdPct / 100
	return nonPrintable <= threshold
}

func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

// CompareFiles reports whether two contents are identical.
func CompareFiles(a, b []byte) bool {
	ha := sha256.Sum256(a)
	hb := sha256.Sum256(b)
	return bytes.Equal(ha[:], hb[:])
}

// GenerateUnifiedDiff renders a unified diff from the hidden version to the
// current one. Identical inputs give "".
func GenerateUnifiedDiff(name string, hidden, current []byte) (string, error) {
	if CompareFiles(hidden, current) {
		return "", nil
	}

	if !DetectFileType(hidden) || !DetectFileType(current) {
		return fmt.Sprintf("Binary files %s differ\n", name), nil
	}

	dmp := diffmatchpatch.New()

	hiddenStr, currentStr := string(hidden), string(current)
	a, b, lineArray := dmp.DiffLinesToChars(hiddenStr, currentStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(hiddenStr, diffs)
	if len(patches) == 0 {
		return "", nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "--- hidden/%s\n", name)
	fmt.Fprintf(&result, "+++ current/%s\n", name)
	result.WriteString(dmp.PatchToText(patches))

	return result.String(), nil
}
