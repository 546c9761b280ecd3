// Package hashing computes SHA-256 digests of files and directory
// trees.
//
// # Overview
//
// FileHash digests a single file's contents. DirectoryHash digests an
// entire tree deterministically: files are visited in sorted order and
// each file contributes its path relative to the root followed by its
// contents, so the same tree always hashes to the same value
// regardless of filesystem ordering.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileHash returns the hex-encoded SHA-256 digest of the file's
// contents.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// DirectoryHash returns the hex-encoded SHA-256 digest of a directory
// tree. Each regular file contributes its slash-separated relative
// path and its contents, in sorted traversal order. Files that cannot
// be read are skipped so a digest is still produced for partially
// readable trees.
func DirectoryHash(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a directory", root)
	}

	hasher := sha256.New()

	// WalkDir visits entries in lexical order, which keeps the digest
	// stable across platforms.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %q: %w", path, err)
		}
		hasher.Write([]byte(filepath.ToSlash(rel)))

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		if _, err := io.Copy(hasher, f); err != nil {
			return nil
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk %q: %w", root, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
