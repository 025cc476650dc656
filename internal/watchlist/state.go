package watchlist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// Entry is one watched symbol.
type Entry struct {
	Symbol     string      `json:"symbol"`
	Range      model.Range `json:"range"`
	AddedAt    time.Time   `json:"added_at"`
	LastDigest time.Time   `json:"last_digest,omitempty"`
}

// State is the persisted watchlist.
type State struct {
	Entries   []Entry   `json:"entries"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadState reads the watchlist from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the watchlist to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
