// Package watchlist keeps the set of symbols that receive scheduled digests.
package watchlist

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// Manager guards the watchlist state and persists every change.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
	now      func() time.Time
}

// NewManager creates a Manager, loading state from disk. seed symbols are
// added with defaultRange only when the file holds no entries yet.
func NewManager(filePath string, seed []string, defaultRange model.Range) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	m := &Manager{state: state, filePath: filePath, now: time.Now}
	if len(state.Entries) == 0 {
		for _, s := range seed {
			m.upsert(s, defaultRange)
		}
	}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Add watches symbol with rng, or updates its range if already watched.
// It reports whether the symbol is new.
func (m *Manager) Add(symbol string, rng model.Range) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	added := m.upsert(symbol, rng)
	if err := m.save(); err != nil {
		return false, err
	}
	return added, nil
}

// Remove stops watching symbol. It reports whether the symbol was watched.
func (m *Manager) Remove(symbol string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbol = normalize(symbol)
	for i, e := range m.state.Entries {
		if e.Symbol == symbol {
			m.state.Entries = append(m.state.Entries[:i], m.state.Entries[i+1:]...)
			return true, m.save()
		}
	}
	return false, nil
}

// List returns a copy of the watched entries in insertion order.
func (m *Manager) List() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.state.Entries))
	copy(out, m.state.Entries)
	return out
}

// MarkDigest records that a digest for symbol was sent at.
func (m *Manager) MarkDigest(symbol string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbol = normalize(symbol)
	for i := range m.state.Entries {
		if m.state.Entries[i].Symbol == symbol {
			m.state.Entries[i].LastDigest = at
			return m.save()
		}
	}
	return fmt.Errorf("%s is not watched", symbol)
}

// upsert must be called with mu held.
func (m *Manager) upsert(symbol string, rng model.Range) bool {
	symbol = normalize(symbol)
	if symbol == "" {
		return false
	}
	if rng == "" {
		rng = model.Range5Y
	}
	for i := range m.state.Entries {
		if m.state.Entries[i].Symbol == symbol {
			m.state.Entries[i].Range = rng
			return false
		}
	}
	m.state.Entries = append(m.state.Entries, Entry{Symbol: symbol, Range: rng, AddedAt: m.now()})
	return true
}

// save must be called with mu held.
func (m *Manager) save() error {
	if err := SaveState(m.filePath, m.state); err != nil {
		log.Printf("[ERROR] failed to save watchlist: %v", err)
		return err
	}
	return nil
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
