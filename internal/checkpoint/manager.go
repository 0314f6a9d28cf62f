package checkpoint

import (
	"fmt"
	"log"
	"sync"
	"time"

	"LiquiMind/internal/model"
)

// Manager owns the current checkpoint with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	current  *model.PolicyCheckpoint
	filePath string
}

// NewManager creates a Manager, loading the checkpoint from disk. When none
// exists, init builds version 0 and it is persisted before returning.
// created reports whether init was used.
func NewManager(filePath string, init func() *model.PolicyCheckpoint) (m *Manager, created bool, err error) {
	cp, err := LoadCheckpoint(filePath)
	if err != nil {
		return nil, false, err
	}

	if cp == nil {
		cp = init()
		cp.Version = 0
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
		if err := SaveCheckpoint(filePath, cp); err != nil {
			return nil, false, fmt.Errorf("persist initial checkpoint: %w", err)
		}
		log.Printf("[INFO] initialised checkpoint v0 at %s", filePath)
		created = true
	}

	return &Manager{current: cp, filePath: filePath}, created, nil
}

// Current returns a copy of the current checkpoint.
func (m *Manager) Current() model.PolicyCheckpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.current
	cp.Weights = append([]float64(nil), m.current.Weights...)
	return cp
}

// Commit persists cp and makes it current. On failure both the in-memory and
// the on-disk checkpoint stay at the previous version.
func (m *Manager) Commit(cp *model.PolicyCheckpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cp.Version <= m.current.Version {
		return fmt.Errorf("commit checkpoint v%d: not newer than v%d", cp.Version, m.current.Version)
	}
	if err := SaveCheckpoint(m.filePath, cp); err != nil {
		return fmt.Errorf("save checkpoint v%d: %w", cp.Version, err)
	}
	next := *cp
	next.Weights = append([]float64(nil), cp.Weights...)
	m.current = &next
	return nil
}

// Path is the checkpoint file location.
func (m *Manager) Path() string { return m.filePath }
