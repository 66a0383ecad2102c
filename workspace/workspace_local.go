package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Workspace is a directory owned by exactly one request
type Workspace struct {
	dir string

	mu       sync.Mutex
	released bool
}

// Dir returns the absolute path of the workspace directory
func (w *Workspace) Dir() string {
	return w.dir
}

// Path resolves a file name inside the workspace
func (w *Workspace) Path(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	for _, s := range strings.Split(filepath.ToSlash(name), "/") {
		if s == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
		}
	}
	return filepath.Join(w.dir, name), nil
}

// WriteFile writes content to name inside the workspace
func (w *Workspace) WriteFile(name string, content []byte) error {
	p, err := w.Path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, content, 0600); err != nil {
		return fmt.Errorf("workspace: write %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is present inside the workspace
func (w *Workspace) Exists(name string) bool {
	p, err := w.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

type localManager struct {
	root   string
	logger *zap.Logger
}

// NewLocalManager creates a workspace manager that creates directories under root.
// Root is created if it does not exist.
func NewLocalManager(root string, logger *zap.Logger) (Manager, error) {
	if root == "" {
		root = os.TempDir()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("workspace: create root: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &localManager{root: root, logger: logger}, nil
}

func (m *localManager) Acquire() (*Workspace, error) {
	var dir string
	_, err := generateUniqueID(func(id string) (bool, error) {
		dir = filepath.Join(m.root, id)
		err := os.Mkdir(dir, 0700)
		if errors.Is(err, os.ErrExist) {
			return true, nil
		}
		return false, err
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: acquire: %w", err)
	}
	m.logger.Debug("workspace acquired", zap.String("dir", dir))
	return &Workspace{dir: dir}, nil
}

func (m *localManager) Release(w *Workspace) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.released {
		return
	}
	w.released = true

	if err := os.RemoveAll(w.dir); err != nil {
		m.logger.Warn("workspace teardown failed", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	m.logger.Debug("workspace released", zap.String("dir", w.dir))
}
