// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout owns the on-disk layout of stage outputs. Every stage reads
// and writes through a Layout so the path conventions live in one place:
//
//	<root>/profiles/<slug>.yaml   extraction output
//	<root>/responses/<slug>.txt   text generation output
//	<root>/images/<slug>.png      image generation output
//	<root>/ledger.db              run history
package layout

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// DefaultRoot is the outputs directory used when none is configured.
	DefaultRoot = "outputs"

	profilesDir  = "profiles"
	responsesDir = "responses"
	imagesDir    = "images"
	ledgerFile   = "ledger.db"

	// fileMode is applied to every output file; CreateTemp alone yields 0600.
	fileMode os.FileMode = 0o644
)

// Layout resolves output paths under Root.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root, or at DefaultRoot when root is empty.
func New(root string) Layout {
	if root == "" {
		root = DefaultRoot
	}
	return Layout{Root: root}
}

func (l Layout) ProfilesDir() string  { return filepath.Join(l.Root, profilesDir) }
func (l Layout) ResponsesDir() string { return filepath.Join(l.Root, responsesDir) }
func (l Layout) ImagesDir() string    { return filepath.Join(l.Root, imagesDir) }

// ProfilePath returns the profile file for a person slug.
func (l Layout) ProfilePath(slug string) string {
	return filepath.Join(l.ProfilesDir(), slug+".yaml")
}

// ResponsePath returns the generated text file for a person slug.
func (l Layout) ResponsePath(slug string) string {
	return filepath.Join(l.ResponsesDir(), slug+".txt")
}

// ImagePath returns the generated portrait for a person slug.
func (l Layout) ImagePath(slug string) string {
	return filepath.Join(l.ImagesDir(), slug+".png")
}

// LedgerPath returns the run-history database path.
func (l Layout) LedgerPath() string {
	return filepath.Join(l.Root, ledgerFile)
}

// EnsureDirs creates the root and all stage output directories.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.ProfilesDir(), l.ResponsesDir(), l.ImagesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// HasChanged reports whether dst needs to be regenerated from src: true if
// dst does not exist or src is more recent.
func HasChanged(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat input %s: %w", src, err)
	}

	dstInfo, err := os.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", dst, err)
	}

	return srcInfo.ModTime().After(dstInfo.ModTime()), nil
}

// WriteFileAtomic writes data to path through a temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	return WriteAtomic(path, bytes.NewReader(data))
}

// WriteAtomic copies r into a temp file next to path and renames it into
// place. On any error the temp file is removed and path is untouched.
func WriteAtomic(path string, r io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".write-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	if copyErr == nil {
		copyErr = tmpFile.Chmod(fileMode)
	}
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
