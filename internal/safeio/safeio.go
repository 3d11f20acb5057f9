// Package safeio confines file operations to a fixed root directory. The
// audit sink derives object keys from request data, so every path is
// resolved and checked against the root before it touches the filesystem.
package safeio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Dir is a directory jail: all reads and writes resolve relative to its
// root, and paths escaping the root are rejected.
type Dir struct {
	absRoot string
}

// NewDir binds a jail to the given root, creating it if necessary.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("safeio: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Dir{absRoot: abs}, nil
}

// Root returns the absolute root directory bound to this jail.
func (d *Dir) Root() string {
	if d == nil {
		return ""
	}
	return d.absRoot
}

// WriteFile writes data to a path relative to the root, creating parent
// directories as needed.
func (d *Dir) WriteFile(name string, data []byte, perm fs.FileMode) error {
	p, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, perm)
}

// ReadFile reads a file relative to the root.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	p, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("safeio: path is a directory")
	}
	return os.ReadFile(p)
}

func (d *Dir) resolve(name string) (string, error) {
	if d == nil {
		return "", errors.New("safeio: directory not configured")
	}
	if name == "" {
		return "", errors.New("safeio: empty path")
	}
	if filepath.IsAbs(name) || (runtime.GOOS == "windows" && filepath.VolumeName(name) != "") {
		return "", errors.New("safeio: absolute path not allowed")
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New("safeio: path traversal not allowed")
	}
	joined := filepath.Join(d.absRoot, clean)
	if !hasPathPrefix(joined, d.absRoot) {
		return "", fmt.Errorf("safeio: resolved outside root (root=%s, path=%s)", d.absRoot, joined)
	}
	return joined, nil
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if len(root) == 0 {
		return true
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	if !strings.HasSuffix(path, sep) {
		path += sep
	}
	return strings.HasPrefix(path, root)
}
