// Package workspace manages the per-request temp directory that holds uploads
// and conversion outputs. A workspace is removed once the request ends.
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/xid"
)

// Workspace is a private directory for one request.
type Workspace struct {
	dir string

	mu      sync.Mutex
	used    map[string]struct{}
	removed bool
}

// New creates a fresh directory under base (created if missing).
func New(base string) (*Workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	dir, err := os.MkdirTemp(base, "req-"+xid.New().String()+"-")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir, used: make(map[string]struct{})}, nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace root.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Save writes r to a file named after the base of name. Names are reserved so
// two uploads with the same filename never overwrite each other.
func (w *Workspace) Save(name string, r io.Reader) (string, error) {
	path := w.Path(w.reserve(SafeName(name)))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// Reserve returns a unique file path for name inside the workspace without
// creating it.
func (w *Workspace) Reserve(name string) string {
	return w.Path(w.reserve(SafeName(name)))
}

// Mkdir creates a sub-directory.
func (w *Workspace) Mkdir(name string) (string, error) {
	p := w.Path(w.reserve(SafeName(name)))
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", err
	}
	return p, nil
}

func (w *Workspace) reserve(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		if _, taken := w.used[candidate]; !taken {
			w.used[candidate] = struct{}{}
			return candidate
		}
		candidate = stem + "-" + strconv.Itoa(i) + ext
	}
}

// Cleanup removes the workspace and everything in it. Safe to call twice.
func (w *Workspace) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.removed {
		return nil
	}
	w.removed = true
	return os.RemoveAll(w.dir)
}

// SafeName strips directories from an uploaded filename.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." || name == "" {
		return "upload"
	}
	return name
}

// Stem returns the filename without directory and extension.
func Stem(name string) string {
	base := SafeName(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "output"
	}
	return stem
}
